// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"conectar/internal/domain/entity"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/domain/repository"
	"conectar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// defaultInactiveWindow is applied when a listing requests the inactivity
// filter without an explicit window.
const defaultInactiveWindow = 30 * 24 * time.Hour

// userColumnsWithoutPassword keeps the password hash out of regular reads.
// Credential validation goes through FindByEmailWithPassword instead.
var userColumnsWithoutPassword = []string{
	"id", "name", "email", "refresh_token_hash", "role",
	"last_login", "provider", "provider_id", "created_at", "updated_at",
}

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Select(userColumnsWithoutPassword).
		Where("id = ?", id).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Select(userColumnsWithoutPassword).
		Where("email = ?", email).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByEmailWithPassword retrieves a user by email with the password hash
// column included. Only credential validation should call this.
func (repo *userRepository) FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByIDWithPassword retrieves a user by ID with the password hash column
// included. Only the password-change flow should call this.
func (repo *userRepository) FindByIDWithPassword(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByProvider retrieves a user by their (provider, providerID) identity.
func (repo *userRepository) FindByProvider(ctx context.Context, provider, providerID string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Select(userColumnsWithoutPassword).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by provider identity")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Propagate the generated ID and timestamps back to the entity.
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user row. Password and refresh-token hashes are
// deliberately untouched here; they have dedicated row-atomic operations.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	updates := map[string]any{
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
	}

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Updates(updates)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrEmailAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password hash for the user.
func (repo *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update password")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// RotateRefreshToken overwrites the stored refresh token hash in a single
// UPDATE, invalidating whatever token was stored before. Login additionally
// touches last_login; refresh does not.
func (repo *userRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, refreshTokenHash string, touchLastLogin bool) error {
	updates := map[string]any{"refresh_token_hash": refreshTokenHash}
	if touchLastLogin {
		updates["last_login"] = time.Now()
	}

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to rotate refresh token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// RevokeRefreshToken clears the refresh token slot. Idempotent: revoking an
// already-empty slot succeeds.
func (repo *userRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("refresh_token_hash", nil)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke refresh token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// List returns one page of users matching params and the total match count.
func (repo *userRepository) List(ctx context.Context, params repository.ListUsersParams) ([]*entity.User, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.UserModel{})

	if params.Role != nil {
		query = query.Where("role = ?", string(*params.Role))
	}

	if params.InactiveOnly {
		window := params.InactiveWindow
		if window <= 0 {
			window = defaultInactiveWindow
		}
		cutoff := time.Now().Add(-window)

		switch {
		case params.NeverLogged != nil && *params.NeverLogged:
			query = query.Where("last_login IS NULL")
		case params.NeverLogged != nil && !*params.NeverLogged:
			query = query.Where("last_login IS NOT NULL AND last_login < ?", cutoff)
		default:
			query = query.Where("last_login IS NULL OR last_login < ?", cutoff)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count users")
	}

	column := "created_at"
	if params.SortBy == repository.SortByName {
		column = "name"
	}
	order := column + " ASC"
	if params.Descending {
		order = column + " DESC"
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 10
	}

	var userModels []model.UserModel
	err := query.
		Select(userColumnsWithoutPassword).
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&userModels).Error
	if err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, toUserDomain(&userModels[i]))
	}

	return users, total, nil
}

// Delete removes a user by ID.
func (repo *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.UserModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// toUserDomain maps the persistence model to the pure domain entity.
func toUserDomain(userM *model.UserModel) *entity.User {
	return &entity.User{
		ID:               userM.ID,
		Name:             userM.Name,
		Email:            userM.Email,
		PasswordHash:     derefString(userM.PasswordHash),
		RefreshTokenHash: derefString(userM.RefreshTokenHash),
		Role:             entity.RoleFromString(userM.Role),
		LastLogin:        userM.LastLogin,
		Provider:         derefString(userM.Provider),
		ProviderID:       derefString(userM.ProviderID),
		CreatedAt:        userM.CreatedAt,
		UpdatedAt:        userM.UpdatedAt,
	}
}

// fromUserDomain maps the domain entity to the persistence model. Empty
// strings become NULLs so partial accounts (social without password) keep the
// column semantics.
func fromUserDomain(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		PasswordHash:     nilIfEmpty(user.PasswordHash),
		RefreshTokenHash: nilIfEmpty(user.RefreshTokenHash),
		Role:             string(user.Role),
		LastLogin:        user.LastLogin,
		Provider:         nilIfEmpty(user.Provider),
		ProviderID:       nilIfEmpty(user.ProviderID),
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
