// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"conectar/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateUserInput defines the data required to register a new user.
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateOrFindSocialUserInput defines the data delivered by a social
// provider after external authorization.
type CreateOrFindSocialUserInput struct {
	Provider   string `json:"provider" validate:"required"`
	ProviderID string `json:"providerId" validate:"required"`
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// FindAllUsersQuery captures pagination, filtering and sorting for listings.
type FindAllUsersQuery struct {
	Page   int     `query:"page" validate:"omitempty,min=1"`
	Limit  int     `query:"limit" validate:"omitempty,min=1,max=100"`
	Role   string  `query:"role" validate:"omitempty,oneof=user admin"`
	SortBy string  `query:"sortBy" validate:"omitempty,oneof=name createdAt"`
	Order  string  `query:"order" validate:"omitempty,oneof=asc desc"`
	// NeverLogged only applies to the inactive listing: "true" keeps accounts
	// that never logged in, "false" keeps stale ones, empty keeps both.
	NeverLogged string `query:"neverLogged" validate:"omitempty,oneof=true false"`
}

// UpdateUserInput defines the admin-side update of a user.
type UpdateUserInput struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateProfileInput defines the self-service profile update.
type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// ChangePasswordInput defines the self-service password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ResetPasswordInput defines the admin-side password reset.
type ResetPasswordInput struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// --- Output DTOs ---

// UserOutput is the sanitized user representation returned to clients.
// Credential material never leaves the use case layer.
type UserOutput struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	Provider  string      `json:"provider,omitempty"`
	LastLogin *time.Time  `json:"lastLogin"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CreateUserOutput returns the newly created user's id.
type CreateUserOutput struct {
	ID uuid.UUID `json:"id"`
}

// FindAllUsersOutput returns one page of users plus paging metadata.
type FindAllUsersOutput struct {
	Users []*UserOutput `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ToUserOutput maps a domain user to its client-facing representation.
func ToUserOutput(user *entity.User) *UserOutput {
	if user == nil {
		return nil
	}

	return &UserOutput{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Provider:  user.Provider,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UserUsecase defines the interface for user registration and CRUD
// operations. This is the contract that the delivery layer depends on.
type UserUsecase interface {
	// Create registers a new traditional user, hashing the password and
	// enforcing email uniqueness across the whole account space.
	Create(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error)

	// CreateOrFindSocialUser resolves a social identity to an account id,
	// creating the account on first login and rejecting emails already bound
	// to a differently-sourced account.
	CreateOrFindSocialUser(ctx context.Context, input *CreateOrFindSocialUserInput) (*CreateUserOutput, error)

	// FindAll lists users with pagination, role filter and sorting.
	FindAll(ctx context.Context, query *FindAllUsersQuery) (*FindAllUsersOutput, error)

	// FindAllInactive lists users that never logged in and/or whose last
	// login is older than the inactivity window.
	FindAllInactive(ctx context.Context, query *FindAllUsersQuery) (*FindAllUsersOutput, error)

	// FindOne retrieves a single user by id.
	FindOne(ctx context.Context, id uuid.UUID) (*UserOutput, error)

	// Update modifies name/email/role of a user, rejecting email collisions.
	Update(ctx context.Context, id uuid.UUID, input *UpdateUserInput) (*UserOutput, error)

	// UpdateProfile modifies the caller's own name/email.
	UpdateProfile(ctx context.Context, id uuid.UUID, input *UpdateProfileInput) (*UserOutput, error)

	// ChangePassword verifies the current password (when the account has one)
	// and stores a hash of the new password.
	ChangePassword(ctx context.Context, id uuid.UUID, input *ChangePasswordInput) error

	// ResetPassword stores a hash of the new password without verification.
	ResetPassword(ctx context.Context, id uuid.UUID, input *ResetPasswordInput) error

	// Remove deletes a user by id.
	Remove(ctx context.Context, id uuid.UUID) error
}
