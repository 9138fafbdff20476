// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "conectar/internal/delivery/context"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/domain/repository"
	"conectar/internal/domain/service"
	"conectar/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager      repository.TransactionManager
	tokenService   service.TokenService
	passwordHasher service.PasswordHasher
	tokenHasher    service.TokenHasher
	oauthAuth      service.OAuthAuthService
	oauthCode      service.OAuthCodeService
	userUsecase    usecase.UserUsecase
	logger         *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	txManager repository.TransactionManager,
	tokenService service.TokenService,
	passwordHasher service.PasswordHasher,
	tokenHasher service.TokenHasher,
	oauthAuth service.OAuthAuthService,
	oauthCode service.OAuthCodeService,
	userUsecase usecase.UserUsecase,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		txManager:      txManager,
		tokenService:   tokenService,
		passwordHasher: passwordHasher,
		tokenHasher:    tokenHasher,
		oauthAuth:      oauthAuth,
		oauthCode:      oauthCode,
		userUsecase:    userUsecase,
		logger:         logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login verifies the email/password pair and issues a fresh token pair.
// The stored refresh token hash is rotated in the same flow, so a second
// login invalidates the refresh token of the first.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.TokenPair, error) {
	srv.log(ctx).Debug("Login attempt", slog.String("email", input.Email))

	var pair *usecase.TokenPair

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		// 1. Load the account including the password hash.
		user, err := userRepo.FindByEmailWithPassword(ctx, input.Email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find user")
		}

		// 2. Social-only accounts carry no password and must use their provider.
		if !user.HasPassword() {
			return domainerrors.ErrSocialOnlyAccount
		}

		// 3. Verify the password.
		if !srv.passwordHasher.Check(input.Password, user.PasswordHash) {
			return domainerrors.ErrInvalidPassword
		}

		// 4. Issue tokens and rotate the stored refresh hash, touching last_login.
		pair, err = srv.issueTokens(ctx, userRepo, user.ID, true)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}
	srv.log(ctx).Info("Login succeeded", slog.Any("user_id", pair.ID))

	return pair, nil
}

// Refresh verifies the presented refresh token against the stored hash and
// issues a replacement pair. The previous refresh token becomes unusable the
// moment the new hash lands. last_login is not touched: refreshing is not a
// credential presentation.
func (srv *authService) Refresh(ctx context.Context, userID uuid.UUID, presentedToken string) (*usecase.TokenPair, error) {
	if presentedToken == "" {
		return nil, domainerrors.ErrNoStoredRefreshToken
	}

	var pair *usecase.TokenPair

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to find user")
		}

		// An empty slot means the user logged out (or never logged in):
		// every outstanding refresh token is dead.
		if user.RefreshTokenHash == "" {
			return domainerrors.ErrNoStoredRefreshToken
		}

		match, err := srv.tokenHasher.Verify(user.RefreshTokenHash, presentedToken)
		if err != nil {
			return errors.Wrap(err, "failed to verify refresh token hash")
		}
		if !match {
			return domainerrors.ErrRefreshTokenInvalid
		}

		pair, err = srv.issueTokens(ctx, userRepo, user.ID, false)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh failed", slog.Any("user_id", userID), slog.Any("error", err))

		return nil, err
	}
	srv.log(ctx).Debug("Refresh succeeded", slog.Any("user_id", userID))

	return pair, nil
}

// Logout clears the stored refresh token hash. Any refresh token issued
// before this call is permanently unusable; access tokens keep working until
// they expire.
func (srv *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().RevokeRefreshToken(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to revoke refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Logout failed", slog.Any("user_id", userID), slog.Any("error", err))

		return err
	}
	srv.log(ctx).Info("Logout succeeded", slog.Any("user_id", userID))

	return nil
}

// ResolveIdentity loads the account's current role for a verified token
// subject. A missing account means the token outlived the user.
func (srv *authService) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*usecase.Identity, error) {
	var identity *usecase.Identity

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUnauthorized
			}

			return errors.Wrap(err, "failed to find user")
		}

		identity = &usecase.Identity{ID: user.ID, Role: user.Role}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return identity, nil
}

// LoginWithGoogle resolves the verified Google identity to an account and
// performs the same side effects as a credential login.
func (srv *authService) LoginWithGoogle(ctx context.Context, input *usecase.GoogleCallbackInput) (*usecase.TokenPair, *usecase.Identity, error) {
	oauthUser, err := srv.verifyGoogleInput(ctx, input)
	if err != nil {
		srv.log(ctx).Warn("Google verification failed", slog.Any("error", err))

		return nil, nil, err
	}

	created, err := srv.userUsecase.CreateOrFindSocialUser(ctx, &usecase.CreateOrFindSocialUserInput{
		Provider:   string(oauthUser.Provider),
		ProviderID: oauthUser.ID,
		Name:       oauthUser.Name,
		Email:      oauthUser.Email,
	})
	if err != nil {
		return nil, nil, err
	}

	var pair *usecase.TokenPair
	var identity *usecase.Identity

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, created.ID)
		if err != nil {
			return errors.Wrap(err, "failed to load social user")
		}
		identity = &usecase.Identity{ID: user.ID, Role: user.Role}

		pair, err = srv.issueTokens(ctx, userRepo, user.ID, true)

		return err
	})
	if err != nil {
		return nil, nil, err
	}
	srv.log(ctx).Info("Google login succeeded", slog.Any("user_id", pair.ID))

	return pair, identity, nil
}

// verifyGoogleInput accepts either a client-supplied ID token or the
// code/state pair from the redirect callback.
func (srv *authService) verifyGoogleInput(ctx context.Context, input *usecase.GoogleCallbackInput) (*service.OAuthUser, error) {
	switch {
	case input.IDToken != "":
		return srv.oauthAuth.VerifyIDToken(ctx, input.IDToken)
	case input.Code != "":
		return srv.oauthCode.ExchangeCode(ctx, input.Code, input.State)
	default:
		return nil, domainerrors.ErrOAuthFailed.WrapMessage("callback carries neither id token nor authorization code")
	}
}

// issueTokens generates a fresh pair, persists the argon2id hash of the
// refresh token and returns the pair. Rotation and the optional last_login
// touch happen in one UPDATE.
func (srv *authService) issueTokens(ctx context.Context, userRepo repository.UserRepository, userID uuid.UUID, touchLastLogin bool) (*usecase.TokenPair, error) {
	accessToken, refreshToken, err := srv.tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	refreshHash, err := srv.tokenHasher.Hash(refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash refresh token")
	}

	if err := userRepo.RotateRefreshToken(ctx, userID, refreshHash, touchLastLogin); err != nil {
		return nil, errors.Wrap(err, "failed to rotate refresh token")
	}

	return &usecase.TokenPair{
		ID:           userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
