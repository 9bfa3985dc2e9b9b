package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// UserService handles profile management and administrative user operations.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateUserInput uses pointers so that absent fields are left untouched.
type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	IsActive  *bool   `json:"is_active"`
	Role      *string `json:"role"`
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID fetches a single user.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Update applies the submitted fields to the target user. Role and active
// flag changes require an admin requester; users may edit their own profile
// fields, admins may edit anyone's.
func (s *UserService) Update(ctx context.Context, requester *models.User, targetID uint, in UpdateUserInput) (*models.User, error) {
	if requester.ID != targetID && !requester.IsAdmin() {
		return nil, models.NewForbiddenError("Not enough permissions")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if in.FirstName != nil {
		if err := validation.ValidateName(*in.FirstName); err != nil {
			fields["first_name"] = err.Error()
		} else {
			user.FirstName = *in.FirstName
		}
	}
	if in.LastName != nil {
		if err := validation.ValidateName(*in.LastName); err != nil {
			fields["last_name"] = err.Error()
		} else {
			user.LastName = *in.LastName
		}
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.Role != nil {
		if !requester.IsAdmin() {
			return nil, models.NewForbiddenError("Only admins can change roles")
		}
		role := models.Role(*in.Role)
		if !models.ValidRole(role) {
			fields["role"] = "invalid role"
		} else {
			user.Role = role
		}
	}
	if in.IsActive != nil {
		if !requester.IsAdmin() {
			return nil, models.NewForbiddenError("Only admins can activate or deactivate accounts")
		}
		user.IsActive = *in.IsActive
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns a page of users for the admin listing.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// Stats returns aggregate account counts.
func (s *UserService) Stats(ctx context.Context) (*repository.UserStats, error) {
	return s.userRepo.Stats(ctx)
}

// Delete removes an account. Admins cannot delete themselves; this prevents
// a deployment from locking out its last administrator.
func (s *UserService) Delete(ctx context.Context, requester *models.User, targetID uint) error {
	if requester.ID == targetID {
		return models.NewValidationError("You cannot delete your own account")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, targetID)
}
