package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

func init() {
	Register("admin", func(ctx context.Context, s Stores) error {
		return seedAdmin(ctx, s, config.AdminEmail(), config.AdminPassword())
	})
}

// seedAdmin creates the first Admin account. An existing account with the
// same email is left untouched.
func seedAdmin(ctx context.Context, s Stores, email, password string) error {
	if password == "" {
		logger.Warn("ADMIN_PASSWORD is empty, skipping admin seeder")
		return nil
	}

	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.Users.Create(ctx, &models.User{
		Email:     email,
		Password:  hash,
		FirstName: "Admin",
		LastName:  "Shopfront",
		Role:      models.RoleAdmin,
	})
}
