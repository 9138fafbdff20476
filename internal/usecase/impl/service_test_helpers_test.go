package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"conectar/config"
	"conectar/internal/domain/entity"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/domain/repository"
	"conectar/internal/domain/service"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:        4,
			InactiveAfterDays: 30,
		},
	}
}

// fakeTxManager runs the callback against a shared in-memory repository.
// There is no rollback; tests assert on the error paths directly.
type fakeTxManager struct {
	repo *fakeUserRepo
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *fakeTxManager) UserRepo() repository.UserRepository {
	return m.repo
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) seed(user *entity.User) *entity.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user

	return user
}

func cloneUser(user *entity.User) *entity.User {
	cloned := *user

	return &cloned
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cloned := cloneUser(user)
	cloned.PasswordHash = ""

	return cloned, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cloned := cloneUser(user)
			cloned.PasswordHash = ""

			return cloned, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmailWithPassword(_ context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDWithPassword(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return cloneUser(user), nil
}

func (r *fakeUserRepo) FindByProvider(_ context.Context, provider, providerID string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Provider == provider && user.ProviderID == providerID {
			cloned := cloneUser(user)
			cloned.PasswordHash = ""

			return cloned, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domainerrors.ErrEmailAlreadyExists
		}
	}
	r.seed(user)

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Role = user.Role
	stored.UpdatedAt = time.Now()

	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	stored, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.PasswordHash = passwordHash

	return nil
}

func (r *fakeUserRepo) RotateRefreshToken(_ context.Context, id uuid.UUID, refreshTokenHash string, touchLastLogin bool) error {
	stored, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.RefreshTokenHash = refreshTokenHash
	if touchLastLogin {
		now := time.Now()
		stored.LastLogin = &now
	}

	return nil
}

func (r *fakeUserRepo) RevokeRefreshToken(_ context.Context, id uuid.UUID) error {
	stored, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.RefreshTokenHash = ""

	return nil
}

func (r *fakeUserRepo) List(_ context.Context, params repository.ListUsersParams) ([]*entity.User, int64, error) {
	window := params.InactiveWindow
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	cutoff := time.Now().Add(-window)

	var matched []*entity.User
	for _, user := range r.users {
		if params.Role != nil && user.Role != *params.Role {
			continue
		}
		if params.InactiveOnly {
			neverLogged := user.LastLogin == nil
			stale := user.LastLogin != nil && user.LastLogin.Before(cutoff)
			switch {
			case params.NeverLogged != nil && *params.NeverLogged && !neverLogged:
				continue
			case params.NeverLogged != nil && !*params.NeverLogged && !stale:
				continue
			case params.NeverLogged == nil && !neverLogged && !stale:
				continue
			}
		}
		cloned := cloneUser(user)
		cloned.PasswordHash = ""
		matched = append(matched, cloned)
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		if params.SortBy == repository.SortByName {
			less = strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
		} else {
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if params.Descending {
			return !less
		}

		return less
	})

	total := int64(len(matched))

	start := (params.Page - 1) * params.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := min(start+params.Limit, len(matched))

	return matched[start:end], total, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)

	return nil
}

// stubPasswordHasher is deterministic and cheap for tests.
type stubPasswordHasher struct{}

func (stubPasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (stubPasswordHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// stubTokenHasher mirrors the rotate/verify contract without argon2 cost.
type stubTokenHasher struct{}

func (stubTokenHasher) Hash(token string) (string, error) {
	return "th:" + token, nil
}

func (stubTokenHasher) Verify(hash, token string) (bool, error) {
	return hash == "th:"+token, nil
}

// stubTokenService issues a distinguishable pair per call.
type stubTokenService struct {
	issued int
}

func (s *stubTokenService) GenerateTokens(userID uuid.UUID) (string, string, error) {
	s.issued++

	return fmt.Sprintf("access-%d-%s", s.issued, userID),
		fmt.Sprintf("refresh-%d-%s", s.issued, userID),
		nil
}

func (s *stubTokenService) ValidateAccessToken(string) (*service.Claims, error) {
	return nil, fmt.Errorf("not implemented in stub")
}

func (s *stubTokenService) ValidateRefreshToken(string) (*service.Claims, error) {
	return nil, fmt.Errorf("not implemented in stub")
}

// stubOAuthAuth returns a fixed verified user or an error.
type stubOAuthAuth struct {
	user *service.OAuthUser
	err  error
}

func (s *stubOAuthAuth) VerifyIDToken(context.Context, string) (*service.OAuthUser, error) {
	return s.user, s.err
}

func (s *stubOAuthAuth) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// stubOAuthCode returns a fixed exchanged user or an error.
type stubOAuthCode struct {
	user *service.OAuthUser
	err  error
}

func (s *stubOAuthCode) BuildAuthorizationURL() string {
	return "https://accounts.google.com/o/oauth2/v2/auth?client_id=test"
}

func (s *stubOAuthCode) ExchangeCode(context.Context, string, string) (*service.OAuthUser, error) {
	return s.user, s.err
}
