package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/model"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

// RecordPreparer enforces user record invariants before a write.
type RecordPreparer interface {
	PrepareForInsert(ctx context.Context, u *model.User) error
	PrepareForUpdate(ctx context.Context, u *model.User) error
}

// ListFilter narrows GetAll. IncludeDeleted switches to the unscoped read path.
type ListFilter struct {
	Limit          int
	Offset         int
	Search         string
	IncludeDeleted bool
}

type UserRepository struct {
	db      *gorm.DB
	records RecordPreparer
	log     *logger.ContextLogger
}

func NewUserRepository(db *gorm.DB, records RecordPreparer, log *logger.ContextLogger) *UserRepository {
	return &UserRepository{db: db, records: records, log: log}
}

// updatableColumns are written by Update. id, created_at and deleted_at have
// their own paths.
var updatableColumns = []string{"email", "name", "password", "is_active", "role_id", "updated_at"}

// Create prepares and inserts user in one transaction. A failure in
// preparation rolls back before anything is written.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	r.log.Debug(ctx, "Creating user").
		String("email", user.Email.String()).
		Log()

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.records.PrepareForInsert(ctx, user); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(user).Error
	})
	duration := time.Since(start)

	if err != nil {
		err = classifyError(err)
		r.log.Error(ctx, "Failed to create user").
			String("email", user.Email.String()).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	r.log.Info(ctx, "User created successfully").
		String("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

// Update prepares user and writes its mutable columns. Soft-deleted rows are
// not matched and report not found.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Update")

	r.log.Debug(ctx, "Updating user").
		String("user_id", user.ID).
		Log()

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.records.PrepareForUpdate(ctx, user); err != nil {
			return err
		}

		result := tx.Model(&model.User{ID: user.ID}).
			Select(updatableColumns).
			Omit(clause.Associations).
			Updates(user)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		err = classifyError(err)
		r.log.Error(ctx, "Failed to update user").
			String("user_id", user.ID).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	r.log.Info(ctx, "User updated successfully").
		String("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

// GetByID is the default read path; soft-deleted users are invisible.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getByID(ctxutil.WithOperation(ctx, "repository", "GetByID"), r.db, id)
}

// GetByIDWithDeleted also returns soft-deleted users.
func (r *UserRepository) GetByIDWithDeleted(ctx context.Context, id string) (*model.User, error) {
	return r.getByID(ctxutil.WithOperation(ctx, "repository", "GetByIDWithDeleted"), r.db.Unscoped(), id)
}

func (r *UserRepository) getByID(ctx context.Context, db *gorm.DB, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		r.log.Warn(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrStorageFailure, err)
	}

	start := time.Now()
	var user model.User
	err := db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&user).Error
	duration := time.Since(start)

	if err != nil {
		err = classifyError(err)
		if apperrors.IsNotFound(err) {
			r.log.Debug(ctx, "User not found").
				String("user_id", id).
				Log()
		} else {
			r.log.Error(ctx, "Failed to get user").
				String("user_id", id).
				Duration(duration).
				Err(err).
				Log()
		}
		return nil, err
	}

	r.log.Debug(ctx, "User retrieved successfully").
		String("user_id", id).
		Duration(duration).
		Log()

	return &user, nil
}

// GetByEmail looks a user up by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByEmail")
	email = model.NormalizeEmail(email)

	start := time.Now()
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error
	duration := time.Since(start)

	if err != nil {
		err = classifyError(err)
		if !apperrors.IsNotFound(err) {
			r.log.Error(ctx, "Failed to get user by email").
				Duration(duration).
				Err(err).
				Log()
		}
		return nil, err
	}

	r.log.Debug(ctx, "User retrieved successfully by email").
		String("user_id", user.ID).
		Duration(duration).
		Log()

	return &user, nil
}

// GetAll returns one page of users ordered by creation time then email,
// plus the total matching filter.
func (r *UserRepository) GetAll(ctx context.Context, filter ListFilter) ([]model.User, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetAll")

	r.log.Debug(ctx, "Getting all users").
		Int("limit", filter.Limit).
		Int("offset", filter.Offset).
		String("search", filter.Search).
		Bool("include_deleted", filter.IncludeDeleted).
		Log()

	if err := ctx.Err(); err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrStorageFailure, err)
	}

	start := time.Now()
	db := r.db
	if filter.IncludeDeleted {
		db = db.Unscoped()
	}

	query := db.WithContext(ctx).Model(&model.User{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		err = classifyError(err)
		r.log.Error(ctx, "Failed to count users").
			Err(err).
			Log()
		return nil, 0, err
	}

	var users []model.User
	err := query.Preload("Role").
		Order("created_at ASC").
		Order("email ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&users).Error
	duration := time.Since(start)

	if err != nil {
		err = classifyError(err)
		r.log.Error(ctx, "Failed to fetch users").
			Duration(duration).
			Err(err).
			Log()
		return nil, 0, err
	}

	r.log.Info(ctx, "Users retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(duration).
		Log()

	return users, total, nil
}

// SoftDelete stamps deleted_at and updated_at together. Deleting an already
// deleted user reports not found.
func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "SoftDelete")

	start := time.Now()
	now := start.UTC()
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": now,
			"updated_at": now,
		})
	duration := time.Since(start)

	if result.Error != nil {
		err := classifyError(result.Error)
		r.log.Error(ctx, "Failed to delete user").
			String("user_id", id).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	if result.RowsAffected == 0 {
		r.log.Warn(ctx, "No user found to delete").
			String("user_id", id).
			Log()
		return apperrors.ErrUserNotFound
	}

	r.log.Info(ctx, "User deleted successfully").
		String("user_id", id).
		Duration(duration).
		Log()

	return nil
}

// Restore clears deleted_at on a soft-deleted user.
func (r *UserRepository) Restore(ctx context.Context, id string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Restore")

	start := time.Now()
	result := r.db.WithContext(ctx).Unscoped().
		Model(&model.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]any{
			"deleted_at": nil,
			"updated_at": time.Now().UTC(),
		})
	duration := time.Since(start)

	if result.Error != nil {
		err := classifyError(result.Error)
		r.log.Error(ctx, "Failed to restore user").
			String("user_id", id).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	if result.RowsAffected == 0 {
		r.log.Warn(ctx, "No deleted user found to restore").
			String("user_id", id).
			Log()
		return apperrors.ErrUserNotFound
	}

	r.log.Info(ctx, "User restored successfully").
		String("user_id", id).
		Duration(duration).
		Log()

	return nil
}

// SetRefreshToken stores an already hashed refresh token, or clears it when
// token is nil.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "SetRefreshToken")

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"refresh_token": token,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		err := classifyError(result.Error)
		r.log.Error(ctx, "Failed to update refresh token").
			String("user_id", id).
			Err(err).
			Log()
		return err
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}

	r.log.Debug(ctx, "Refresh token updated").
		String("user_id", id).
		Bool("has_token", token != nil).
		Log()

	return nil
}

// classifyError maps driver errors onto domain errors. Errors that already
// carry a domain code (validation, hashing) pass through untouched.
func classifyError(err error) error {
	if err == nil || apperrors.IsDomainError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return apperrors.WrapError(apperrors.ErrEmailExists, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.WrapError(apperrors.ErrUserNotFound, err)
	default:
		return apperrors.WrapError(apperrors.ErrStorageFailure, err)
	}
}
