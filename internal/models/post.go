package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// ValidPostStatus reports whether s is one of the known statuses.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post represents a content item owned by exactly one user.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Slug        string         `gorm:"uniqueIndex;size:250;not null" json:"slug"`
	Excerpt     string         `gorm:"size:500" json:"excerpt"`
	Status      PostStatus     `gorm:"size:20;not null;default:draft;index" json:"status"`
	Tags        string         `gorm:"size:500" json:"tags"`
	ViewCount   int            `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPublished reports whether the post is visible to everyone.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsDraft reports whether the post is still a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// WordCount returns the number of whitespace-separated words in the content.
func (p *Post) WordCount() int {
	return len(strings.Fields(p.Content))
}

// ReadingTime estimates reading time in minutes at 250 words per minute.
func (p *Post) ReadingTime() int {
	minutes := p.WordCount() / 250
	if minutes < 1 {
		return 1
	}
	return minutes
}
