package impl

import (
	"context"
	"testing"
	"time"

	"conectar/internal/domain/entity"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceForTest(repo *fakeUserRepo) usecase.UserUsecase {
	return NewUserService(&fakeTxManager{repo: repo}, stubPasswordHasher{}, newTestConfig(), newDiscardLogger())
}

func TestUserService_Create_Success(t *testing.T) {
	repo := newFakeUserRepo()
	userSvc := newUserServiceForTest(repo)

	out, err := userSvc.Create(context.Background(), &usecase.CreateUserInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	stored := repo.users[out.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, entity.RoleUser, stored.Role)
	// The password is stored hashed, never verbatim.
	assert.Equal(t, "hashed:secret123", stored.PasswordHash)
	assert.Nil(t, stored.LastLogin)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(&entity.User{Email: "alice@example.com", PasswordHash: "hashed:x", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)

	out, err := userSvc.Create(context.Background(), &usecase.CreateUserInput{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyExists)
	assert.Len(t, repo.users, 1)
}

func TestUserService_CreateOrFindSocialUser_Idempotent(t *testing.T) {
	repo := newFakeUserRepo()
	userSvc := newUserServiceForTest(repo)
	ctx := context.Background()
	input := &usecase.CreateOrFindSocialUserInput{
		Provider:   "google",
		ProviderID: "google-42",
		Name:       "Bob",
		Email:      "bob@example.com",
	}

	first, err := userSvc.CreateOrFindSocialUser(ctx, input)
	require.NoError(t, err)

	second, err := userSvc.CreateOrFindSocialUser(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.users, 1)

	stored := repo.users[first.ID]
	assert.Empty(t, stored.PasswordHash)
	assert.Equal(t, "google", stored.Provider)
	assert.Equal(t, "google-42", stored.ProviderID)
}

func TestUserService_CreateOrFindSocialUser_EmailConflict(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(&entity.User{Email: "bob@example.com", PasswordHash: "hashed:x", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)

	out, err := userSvc.CreateOrFindSocialUser(context.Background(), &usecase.CreateOrFindSocialUserInput{
		Provider:   "google",
		ProviderID: "google-42",
		Email:      "bob@example.com",
	})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domainerrors.ErrEmailBoundToOtherMethod)
}

func TestUserService_FindAll_DefaultsAndPagination(t *testing.T) {
	repo := newFakeUserRepo()
	for i := 0; i < 15; i++ {
		repo.seed(&entity.User{
			Email: time.Now().Format("150405.000") + string(rune('a'+i)) + "@example.com",
			Name:  string(rune('a' + i)),
			Role:  entity.RoleUser,
		})
	}
	userSvc := newUserServiceForTest(repo)
	ctx := context.Background()

	out, err := userSvc.FindAll(ctx, &usecase.FindAllUsersQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(15), out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 10, out.Limit)
	assert.Len(t, out.Users, 10)

	out, err = userSvc.FindAll(ctx, &usecase.FindAllUsersQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, out.Users, 5)
}

func TestUserService_FindAll_RoleFilterAndSorting(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(&entity.User{Email: "zoe@example.com", Name: "Zoe", Role: entity.RoleAdmin})
	repo.seed(&entity.User{Email: "amy@example.com", Name: "Amy", Role: entity.RoleUser})
	repo.seed(&entity.User{Email: "mia@example.com", Name: "Mia", Role: entity.RoleAdmin})
	userSvc := newUserServiceForTest(repo)

	out, err := userSvc.FindAll(context.Background(), &usecase.FindAllUsersQuery{
		Role:   "admin",
		SortBy: "name",
		Order:  "desc",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	require.Len(t, out.Users, 2)
	assert.Equal(t, "Zoe", out.Users[0].Name)
	assert.Equal(t, "Mia", out.Users[1].Name)
}

func TestUserService_FindAllInactive(t *testing.T) {
	repo := newFakeUserRepo()
	recent := time.Now().Add(-24 * time.Hour)
	stale := time.Now().Add(-45 * 24 * time.Hour)
	repo.seed(&entity.User{Email: "active@example.com", Name: "Active", Role: entity.RoleUser, LastLogin: &recent})
	repo.seed(&entity.User{Email: "stale@example.com", Name: "Stale", Role: entity.RoleUser, LastLogin: &stale})
	repo.seed(&entity.User{Email: "never@example.com", Name: "Never", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)
	ctx := context.Background()

	out, err := userSvc.FindAllInactive(ctx, &usecase.FindAllUsersQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)

	out, err = userSvc.FindAllInactive(ctx, &usecase.FindAllUsersQuery{NeverLogged: "true"})
	require.NoError(t, err)
	require.Len(t, out.Users, 1)
	assert.Equal(t, "Never", out.Users[0].Name)

	out, err = userSvc.FindAllInactive(ctx, &usecase.FindAllUsersQuery{NeverLogged: "false"})
	require.NoError(t, err)
	require.Len(t, out.Users, 1)
	assert.Equal(t, "Stale", out.Users[0].Name)
}

func TestUserService_FindOne_SanitizesOutput(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seed(&entity.User{
		Email:            "alice@example.com",
		Name:             "Alice",
		PasswordHash:     "hashed:secret",
		RefreshTokenHash: "th:token",
		Role:             entity.RoleUser,
	})
	userSvc := newUserServiceForTest(repo)

	out, err := userSvc.FindOne(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.ID)
	assert.Equal(t, "alice@example.com", out.Email)
}

func TestUserService_Update_EmailConflict(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.seed(&entity.User{Email: "alice@example.com", Name: "Alice", Role: entity.RoleUser})
	repo.seed(&entity.User{Email: "bob@example.com", Name: "Bob", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)

	taken := "bob@example.com"
	out, err := userSvc.Update(context.Background(), alice.ID, &usecase.UpdateUserInput{Email: &taken})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyExists)
	assert.Equal(t, "alice@example.com", repo.users[alice.ID].Email)
}

func TestUserService_Update_RoleChange(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seed(&entity.User{Email: "alice@example.com", Name: "Alice", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)

	role := "admin"
	out, err := userSvc.Update(context.Background(), user.ID, &usecase.UpdateUserInput{Role: &role})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.Role)
	assert.Equal(t, entity.RoleAdmin, repo.users[user.ID].Role)
}

func TestUserService_ChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seed(&entity.User{Email: "alice@example.com", PasswordHash: "hashed:old", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)
	ctx := context.Background()

	// Wrong current password is rejected.
	err := userSvc.ChangePassword(ctx, user.ID, &usecase.ChangePasswordInput{
		CurrentPassword: "nope",
		NewPassword:     "brand-new",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPassword)
	assert.Equal(t, "hashed:old", repo.users[user.ID].PasswordHash)

	// Correct current password goes through.
	err = userSvc.ChangePassword(ctx, user.ID, &usecase.ChangePasswordInput{
		CurrentPassword: "old",
		NewPassword:     "brand-new",
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:brand-new", repo.users[user.ID].PasswordHash)
}

func TestUserService_ChangePassword_SocialAccountSetsFirstPassword(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seed(&entity.User{
		Email:      "social@example.com",
		Role:       entity.RoleUser,
		Provider:   "google",
		ProviderID: "google-1",
	})
	userSvc := newUserServiceForTest(repo)

	err := userSvc.ChangePassword(context.Background(), user.ID, &usecase.ChangePasswordInput{
		NewPassword: "first-password",
	})

	require.NoError(t, err)
	assert.Equal(t, "hashed:first-password", repo.users[user.ID].PasswordHash)
}

func TestUserService_ResetPassword(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seed(&entity.User{Email: "alice@example.com", PasswordHash: "hashed:old", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)

	err := userSvc.ResetPassword(context.Background(), user.ID, &usecase.ResetPasswordInput{NewPassword: "reset-by-admin"})

	require.NoError(t, err)
	assert.Equal(t, "hashed:reset-by-admin", repo.users[user.ID].PasswordHash)
}

func TestUserService_Remove(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.seed(&entity.User{Email: "alice@example.com", Role: entity.RoleUser})
	userSvc := newUserServiceForTest(repo)
	ctx := context.Background()

	require.NoError(t, userSvc.Remove(ctx, user.ID))
	assert.Empty(t, repo.users)

	err := userSvc.Remove(ctx, user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
