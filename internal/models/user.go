// Package models contains data structures for the application's domain entities.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the access level assigned to a user account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account in the Inkwell application.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword string         `gorm:"size:255;not null" json:"-"`
	FirstName      string         `gorm:"size:100;not null" json:"first_name"`
	LastName       string         `gorm:"size:100;not null" json:"last_name"`
	Bio            string         `gorm:"size:1000" json:"bio,omitempty"`
	AvatarURL      string         `gorm:"size:500" json:"avatar_url,omitempty"`
	Role           Role           `gorm:"size:20;not null;default:user" json:"role"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	IsVerified     bool           `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	LastLogin      *time.Time     `json:"last_login,omitempty"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Posts          []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator reports whether the user holds moderator privileges.
// Admins count as moderators.
func (u *User) IsModerator() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// CanEditPost reports whether the user may edit or publish the given post.
func (u *User) CanEditPost(p *Post) bool {
	return u.IsModerator() || p.UserID == u.ID
}

// CanDeletePost reports whether the user may delete the given post.
func (u *User) CanDeletePost(p *Post) bool {
	return u.IsAdmin() || p.UserID == u.ID
}
