package database

import (
	"context"
	"fmt"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/model"
	"go.uber.org/zap"
)

// RoleSeeder is implemented by *repository.RoleRepository.
type RoleSeeder interface {
	EnsureRoles(ctx context.Context, roles ...*model.Role) error
}

// DefaultRoles returns the roles every installation needs.
func DefaultRoles() ([]*model.Role, error) {
	admin, err := model.NewRole(constants.RoleAdmin, "Full access", "*")
	if err != nil {
		return nil, err
	}
	user, err := model.NewRole(constants.RoleUser, "Read access to the factbook", "factbook:read")
	if err != nil {
		return nil, err
	}
	return []*model.Role{admin, user}, nil
}

// Seed inserts the default roles; existing roles are left alone.
func Seed(ctx context.Context, roles RoleSeeder, log *zap.Logger) error {
	defaults, err := DefaultRoles()
	if err != nil {
		return fmt.Errorf("build default roles: %w", err)
	}

	if err := roles.EnsureRoles(ctx, defaults...); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	log.Info("Default roles ensured", zap.Int("count", len(defaults)))
	return nil
}
