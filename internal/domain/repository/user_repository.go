// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"conectar/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// SortField enumerates the columns the user listing can sort by.
type SortField string

const (
	// SortByName sorts the listing by display name.
	SortByName SortField = "name"
	// SortByCreatedAt sorts the listing by account creation time.
	SortByCreatedAt SortField = "createdAt"
)

// ListUsersParams captures pagination, filtering and sorting for user listings.
type ListUsersParams struct {
	Page  int // 1-based page number.
	Limit int // Page size, capped by the delivery layer.

	Role *entity.Role // Optional role filter.

	// Inactivity filters. InactiveOnly restricts the listing to accounts that
	// never logged in or whose last login is older than the inactivity window.
	// NeverLogged further narrows it: true keeps only never-logged accounts,
	// false keeps only stale ones, nil keeps both.
	InactiveOnly bool
	NeverLogged  *bool
	// InactiveWindow is the inactivity threshold; zero falls back to the
	// implementation default of 30 days.
	InactiveWindow time.Duration

	SortBy SortField
	// Descending reverses the sort order (default ascending).
	Descending bool
}

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete implementation.
//
// Reads exclude the password hash by default, mirroring the column's
// restricted visibility; FindByEmailWithPassword is the single deliberate
// exception used by credential validation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByEmailWithPassword retrieves a user by email including the
	// password hash column that other reads omit.
	FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)

	// FindByIDWithPassword retrieves a user by ID including the password
	// hash column. Used by the password-change flow.
	FindByIDWithPassword(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByProvider retrieves a user by their social identity, i.e. the
	// (provider, providerID) pair.
	FindByProvider(ctx context.Context, provider, providerID string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// UpdatePassword replaces the stored password hash for the user.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// RotateRefreshToken unconditionally overwrites the stored refresh token
	// hash, invalidating any previously issued refresh token. When
	// touchLastLogin is set the last-login timestamp is updated in the same
	// row-atomic statement; this is the login flow, refresh passes false.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, refreshTokenHash string, touchLastLogin bool) error

	// RevokeRefreshToken clears the stored refresh token hash, making every
	// previously issued refresh token for the user permanently unusable.
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error

	// List returns one page of users matching params together with the total
	// number of matching rows.
	List(ctx context.Context, params ListUsersParams) ([]*entity.User, int64, error)

	// Delete removes a user by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
