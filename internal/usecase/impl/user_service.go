package impl

import (
	"context"
	"log/slog"
	"time"

	"conectar/config"
	deliverycontext "conectar/internal/delivery/context"
	"conectar/internal/domain/entity"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/domain/repository"
	"conectar/internal/domain/service"
	"conectar/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager      repository.TransactionManager
	passwordHasher service.PasswordHasher
	inactiveWindow time.Duration
	logger         *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(
	txManager repository.TransactionManager,
	passwordHasher service.PasswordHasher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.UserUsecase {
	var window time.Duration
	if cfg.Auth != nil && cfg.Auth.InactiveAfterDays > 0 {
		window = time.Duration(cfg.Auth.InactiveAfterDays) * 24 * time.Hour
	}

	return &userService{
		txManager:      txManager,
		passwordHasher: passwordHasher,
		inactiveWindow: window,
		logger:         logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create registers a new traditional user. Email uniqueness is checked
// inside the transaction; the unique index backs it up against races.
func (srv *userService) Create(ctx context.Context, input *usecase.CreateUserInput) (*usecase.CreateUserOutput, error) {
	srv.log(ctx).Debug("Creating user", slog.String("email", input.Email))

	// Hashing is CPU-bound; keep it outside the transaction.
	passwordHash, err := srv.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         entity.RoleUser,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrEmailAlreadyExists
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check email uniqueness")
		}

		return userRepo.Create(ctx, user)
	})
	if err != nil {
		srv.log(ctx).Warn("User creation failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}
	srv.log(ctx).Info("User created", slog.Any("user_id", user.ID))

	return &usecase.CreateUserOutput{ID: user.ID}, nil
}

// CreateOrFindSocialUser resolves a social identity to an account id.
// The three steps run in one transaction:
//  1. an account already bound to (provider, providerID) is returned as-is,
//  2. an account holding the same email under a different method is a
//     conflict,
//  3. otherwise a passwordless account is created.
func (srv *userService) CreateOrFindSocialUser(ctx context.Context, input *usecase.CreateOrFindSocialUserInput) (*usecase.CreateUserOutput, error) {
	var out *usecase.CreateUserOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		existing, err := userRepo.FindByProvider(ctx, input.Provider, input.ProviderID)
		if err == nil {
			out = &usecase.CreateUserOutput{ID: existing.ID}

			return nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to find user by provider identity")
		}

		_, err = userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrEmailBoundToOtherMethod
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check email uniqueness")
		}

		name := input.Name
		if name == "" {
			name = input.Email
		}
		user := &entity.User{
			Name:       name,
			Email:      input.Email,
			Role:       entity.RoleUser,
			Provider:   input.Provider,
			ProviderID: input.ProviderID,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		out = &usecase.CreateUserOutput{ID: user.ID}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Social user resolution failed",
			slog.String("provider", input.Provider),
			slog.Any("error", err))

		return nil, err
	}

	return out, nil
}

// FindAll lists users with pagination, role filter and sorting.
func (srv *userService) FindAll(ctx context.Context, query *usecase.FindAllUsersQuery) (*usecase.FindAllUsersOutput, error) {
	return srv.list(ctx, query, false)
}

// FindAllInactive lists users that never logged in and/or whose last login
// is older than the inactivity window.
func (srv *userService) FindAllInactive(ctx context.Context, query *usecase.FindAllUsersQuery) (*usecase.FindAllUsersOutput, error) {
	return srv.list(ctx, query, true)
}

func (srv *userService) list(ctx context.Context, query *usecase.FindAllUsersQuery, inactiveOnly bool) (*usecase.FindAllUsersOutput, error) {
	params := srv.buildListParams(query, inactiveOnly)

	var out *usecase.FindAllUsersOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		users, total, err := repoFactory.UserRepo().List(ctx, params)
		if err != nil {
			return errors.Wrap(err, "failed to list users")
		}

		outputs := make([]*usecase.UserOutput, 0, len(users))
		for _, user := range users {
			outputs = append(outputs, usecase.ToUserOutput(user))
		}
		out = &usecase.FindAllUsersOutput{
			Users: outputs,
			Total: total,
			Page:  params.Page,
			Limit: params.Limit,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// buildListParams applies defaults and bounds to the raw query.
func (srv *userService) buildListParams(query *usecase.FindAllUsersQuery, inactiveOnly bool) repository.ListUsersParams {
	params := repository.ListUsersParams{
		Page:           defaultPage,
		Limit:          defaultLimit,
		SortBy:         repository.SortByCreatedAt,
		InactiveOnly:   inactiveOnly,
		InactiveWindow: srv.inactiveWindow,
	}

	if query == nil {
		return params
	}

	if query.Page > 0 {
		params.Page = query.Page
	}
	if query.Limit > 0 {
		params.Limit = min(query.Limit, maxLimit)
	}
	if query.Role != "" {
		role := entity.RoleFromString(query.Role)
		params.Role = &role
	}
	if query.SortBy == string(repository.SortByName) {
		params.SortBy = repository.SortByName
	}
	params.Descending = query.Order == "desc"

	if inactiveOnly {
		switch query.NeverLogged {
		case "true":
			neverLogged := true
			params.NeverLogged = &neverLogged
		case "false":
			neverLogged := false
			params.NeverLogged = &neverLogged
		}
	}

	return params
}

// FindOne retrieves a single user by id.
func (srv *userService) FindOne(ctx context.Context, id uuid.UUID) (*usecase.UserOutput, error) {
	var out *usecase.UserOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}
		out = usecase.ToUserOutput(user)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Update modifies name/email/role of a user.
func (srv *userService) Update(ctx context.Context, id uuid.UUID, input *usecase.UpdateUserInput) (*usecase.UserOutput, error) {
	return srv.update(ctx, id, input.Name, input.Email, input.Role)
}

// UpdateProfile modifies the caller's own name/email. Role changes stay
// admin-only.
func (srv *userService) UpdateProfile(ctx context.Context, id uuid.UUID, input *usecase.UpdateProfileInput) (*usecase.UserOutput, error) {
	return srv.update(ctx, id, input.Name, input.Email, nil)
}

func (srv *userService) update(ctx context.Context, id uuid.UUID, name, email, role *string) (*usecase.UserOutput, error) {
	var out *usecase.UserOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		if email != nil && *email != user.Email {
			other, err := userRepo.FindByEmail(ctx, *email)
			if err == nil && other.ID != user.ID {
				return domainerrors.ErrEmailAlreadyExists
			}
			if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(err, "failed to check email uniqueness")
			}
			user.Email = *email
		}
		if name != nil {
			user.Name = *name
		}
		if role != nil {
			user.Role = entity.RoleFromString(*role)
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return err
		}
		out = usecase.ToUserOutput(user)

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User update failed", slog.Any("user_id", id), slog.Any("error", err))

		return nil, err
	}
	srv.log(ctx).Info("User updated", slog.Any("user_id", id))

	return out, nil
}

// ChangePassword verifies the current password when the account has one and
// stores a hash of the new password. Social-only accounts set their first
// password here without a current-password check.
func (srv *userService) ChangePassword(ctx context.Context, id uuid.UUID, input *usecase.ChangePasswordInput) error {
	newHash, err := srv.passwordHasher.Hash(input.NewPassword)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByIDWithPassword(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		if user.HasPassword() {
			if input.CurrentPassword == "" {
				return domainerrors.ErrInvalidPassword
			}
			if !srv.passwordHasher.Check(input.CurrentPassword, user.PasswordHash) {
				return domainerrors.ErrInvalidPassword
			}
		}

		return userRepo.UpdatePassword(ctx, id, newHash)
	})
	if err != nil {
		srv.log(ctx).Warn("Password change failed", slog.Any("user_id", id), slog.Any("error", err))

		return err
	}
	srv.log(ctx).Info("Password changed", slog.Any("user_id", id))

	return nil
}

// ResetPassword stores a hash of the new password without verification.
// Admin-only; authorization is enforced at the delivery layer.
func (srv *userService) ResetPassword(ctx context.Context, id uuid.UUID, input *usecase.ResetPasswordInput) error {
	newHash, err := srv.passwordHasher.Hash(input.NewPassword)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().UpdatePassword(ctx, id, newHash); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return err
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.Any("user_id", id), slog.Any("error", err))

		return err
	}
	srv.log(ctx).Info("Password reset", slog.Any("user_id", id))

	return nil
}

// Remove deletes a user by id.
func (srv *userService) Remove(ctx context.Context, id uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return err
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User removal failed", slog.Any("user_id", id), slog.Any("error", err))

		return err
	}
	srv.log(ctx).Info("User removed", slog.Any("user_id", id))

	return nil
}
