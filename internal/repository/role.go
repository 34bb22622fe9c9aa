package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/model"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	db  *gorm.DB
	log *logger.ContextLogger
}

func NewRoleRepository(db *gorm.DB, log *logger.ContextLogger) *RoleRepository {
	return &RoleRepository{db: db, log: log}
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*model.Role, error) {
	return r.first(ctxutil.WithOperation(ctx, "repository", "GetRoleByID"), "id = ?", id)
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	return r.first(ctxutil.WithOperation(ctx, "repository", "GetRoleByName"), "name = ?", name)
}

func (r *RoleRepository) first(ctx context.Context, cond string, arg string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where(cond, arg).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WrapError(apperrors.ErrRoleNotFound, err)
		}
		r.log.Error(ctx, "Failed to get role").
			String("lookup", arg).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrStorageFailure, err)
	}
	return &role, nil
}

// EnsureRoles inserts roles whose name is not taken yet; existing rows are
// left alone.
func (r *RoleRepository) EnsureRoles(ctx context.Context, roles ...*model.Role) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "EnsureRoles")
	if len(roles) == 0 {
		return nil
	}

	start := time.Now()
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(roles)
	if result.Error != nil {
		r.log.Error(ctx, "Failed to seed roles").
			Err(result.Error).
			Log()
		return apperrors.WrapError(apperrors.ErrStorageFailure, result.Error)
	}

	r.log.Info(ctx, "Roles ensured").
		Int("requested", len(roles)).
		Int64("inserted", result.RowsAffected).
		Duration(time.Since(start)).
		Log()

	return nil
}
