// Command seed migrates the users table and fills it with a deterministic
// development data set: one admin, a block of traditional users with
// staggered last-login timestamps, and a block of Google-linked accounts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"conectar/config"
	"conectar/internal/domain/entity"
	"conectar/internal/infra/auth"
	"conectar/internal/infra/persistence/model"
	"conectar/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("Seed failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Seed completed")
}

func run(logger *slog.Logger) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "connect postgres")
	}

	if err := db.AutoMigrate(&model.UserModel{}); err != nil {
		return errors.Wrap(err, "migrate users table")
	}

	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.UserModel{}).Error; err != nil {
		return errors.Wrap(err, "clear users table")
	}

	users, err := buildSeedUsers(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo := postgres.NewUserRepository(db)
	for _, user := range users {
		if err := repo.Create(ctx, user); err != nil {
			return errors.Wrapf(err, "seed user %s", user.Email)
		}
	}
	logger.Info("Seeded users", slog.Int("count", len(users)))

	return nil
}

func buildSeedUsers(cfg *config.Config) ([]*entity.User, error) {
	hasher := auth.NewBcryptHasher(cfg)

	adminHash, err := hasher.Hash("admin123")
	if err != nil {
		return nil, errors.Wrap(err, "hash admin password")
	}
	userHash, err := hasher.Hash("user123")
	if err != nil {
		return nil, errors.Wrap(err, "hash user password")
	}

	users := []*entity.User{
		{
			Name:         "Admin Example",
			Email:        "admin@conectar.com",
			PasswordHash: adminHash,
			Role:         entity.RoleAdmin,
			LastLogin:    daysAgo(5),
		},
		{
			Name:         "Usuário Comum",
			Email:        "user1@conectar.com",
			PasswordHash: userHash,
			Role:         entity.RoleUser,
			LastLogin:    daysAgo(40),
		},
		{
			Name:       "Usuário Social Google",
			Email:      "social@conectar.com",
			Role:       entity.RoleUser,
			Provider:   string(entity.ProviderTypeGoogle),
			ProviderID: "google-123",
		},
	}

	// Traditional users, alternating between recently active and stale.
	for i := 2; i <= 20; i++ {
		lastLogin := daysAgo(45)
		if i%3 == 1 {
			lastLogin = daysAgo(10)
		}
		users = append(users, &entity.User{
			Name:         fmt.Sprintf("Usuário %d", i),
			Email:        fmt.Sprintf("user%d@conectar.com", i),
			PasswordHash: userHash,
			Role:         entity.RoleUser,
			LastLogin:    lastLogin,
		})
	}

	// Social users, a third of which never logged in.
	for i := 21; i <= 50; i++ {
		user := &entity.User{
			Name:       fmt.Sprintf("Usuário Social %d", i),
			Email:      fmt.Sprintf("social%d@conectar.com", i),
			Role:       entity.RoleUser,
			Provider:   string(entity.ProviderTypeGoogle),
			ProviderID: fmt.Sprintf("google-%d", i),
		}
		switch i % 3 {
		case 0:
			// never logged in
		case 1:
			user.LastLogin = daysAgo(2)
		default:
			user.LastLogin = daysAgo(60)
		}
		users = append(users, user)
	}

	return users, nil
}

func daysAgo(days int) *time.Time {
	t := time.Now().AddDate(0, 0, -days)

	return &t
}
