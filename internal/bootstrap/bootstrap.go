// Package bootstrap guarantees that a fresh deployment has an administrator.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/vaughan-dsouza/certportal/internal/models"
)

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	Create(ctx context.Context, a *models.Admin) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// EnsureAdmin creates an ADMIN account for email unless one already exists.
// An existing account is never modified, so it is safe on every restart.
func EnsureAdmin(ctx context.Context, admins AdminRepository, hasher PasswordHasher, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, errors.New("bootstrap: admin email and password are required")
	}

	_, err := admins.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("bootstrap: lookup admin: %w", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}

	admin := models.Admin{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := admins.Create(ctx, &admin); err != nil {
		// another instance created it between lookup and insert
		if errors.Is(err, models.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("bootstrap: create admin: %w", err)
	}
	return true, nil
}
