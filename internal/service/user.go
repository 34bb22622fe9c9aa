package service

import (
	"context"
	"strings"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/dto"
	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/model"
	"github.com/Payphone-Digital/factbook/internal/repository"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/Payphone-Digital/factbook/pkg/password"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDWithDeleted(ctx context.Context, id string) (*model.User, error)
	GetAll(ctx context.Context, filter repository.ListFilter) ([]model.User, int64, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type RoleStore interface {
	GetByName(ctx context.Context, name string) (*model.Role, error)
}

type UserCache interface {
	Get(ctx context.Context, id string) (*dto.UserResponse, bool)
	Set(ctx context.Context, view *dto.UserResponse)
	Invalidate(ctx context.Context, id string)
}

// UserService orchestrates user CRUD. Record invariants (normalization,
// hashing, timestamps) are enforced by the repository's write path, not here.
type UserService struct {
	users UserStore
	roles RoleStore
	cache UserCache
	log   *logger.ContextLogger
}

func NewUserService(users UserStore, roles RoleStore, cache UserCache, log *logger.ContextLogger) *UserService {
	if cache == nil {
		cache = NoopUserCache{}
	}
	return &UserService{users: users, roles: roles, cache: cache, log: log}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetByID")

	if view, ok := s.cache.Get(ctx, id); ok {
		s.log.Debug(ctx, "User served from cache").
			String("user_id", id).
			Log()
		return view, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := dto.ToUserResponse(user)
	s.cache.Set(ctx, &view)
	return &view, nil
}

// GetAll lists one page of users. includeDeleted selects the unscoped path.
func (s *UserService) GetAll(ctx context.Context, page constants.PaginationParams, search string, includeDeleted bool) ([]dto.UserResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetAll")

	users, total, err := s.users.GetAll(ctx, repository.ListFilter{
		Limit:          page.Limit,
		Offset:         page.Offset,
		Search:         strings.TrimSpace(search),
		IncludeDeleted: includeDeleted,
	})
	if err != nil {
		s.log.Error(ctx, "Failed to list users").
			Err(err).
			Log()
		return nil, 0, err
	}

	return dto.ToUserResponses(users), total, nil
}

func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Create")

	roleName := req.Role
	if roleName == "" {
		roleName = constants.RoleUser
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	opts := []model.UserOption{
		model.WithEmail(req.Email),
		model.WithName(strings.TrimSpace(req.Name)),
		model.WithPassword(req.Password),
		model.WithRole(*role),
	}
	if req.IsActive != nil {
		opts = append(opts, model.WithActive(*req.IsActive))
	}
	user := model.NewUser(opts...)

	if err := s.users.Create(ctx, user); err != nil {
		s.log.Warn(ctx, "Failed to create user").
			Err(err).
			Log()
		return nil, err
	}

	s.log.Info(ctx, "User created").
		String("user_id", user.ID).
		String("role", role.Name).
		Log()

	view := dto.ToUserResponse(user)
	return &view, nil
}

func (s *UserService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Update")

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = model.Email(*req.Email)
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Role != nil && *req.Role != user.Role.Name {
		role, err := s.roles.GetByName(ctx, *req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = *role
		user.RoleID = role.ID
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.log.Warn(ctx, "Failed to update user").
			String("user_id", id).
			Err(err).
			Log()
		return nil, err
	}
	s.cache.Invalidate(ctx, id)

	view := dto.ToUserResponse(user)
	return &view, nil
}

// UpdatePassword replaces the password after checking the current one. The
// new value is stored hashed by the repository write path.
func (s *UserService) UpdatePassword(ctx context.Context, id string, req *dto.UpdatePasswordRequest) error {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdatePassword")

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Password != "" {
		ok, err := password.Verify(user.Password, req.CurrentPassword)
		if err != nil {
			s.log.Error(ctx, "Stored password hash is unreadable").
				String("user_id", id).
				Err(err).
				Log()
			return apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if !ok {
			s.log.Warn(ctx, "Current password mismatch").
				String("user_id", id).
				Log()
			return apperrors.ErrIncorrectPassword
		}
	}

	user.Password = req.NewPassword
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info(ctx, "User password updated").
		String("user_id", id).
		Log()
	return nil
}

// Delete soft-deletes id on behalf of actorID. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Delete")

	if id == actorID {
		s.log.Warn(ctx, "User attempted to delete themselves").
			String("user_id", id).
			Log()
		return apperrors.ErrSelfDeletion
	}

	if err := s.users.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)

	s.log.Info(ctx, "User deleted").
		String("target_user_id", id).
		String("requesting_user_id", actorID).
		Log()
	return nil
}

func (s *UserService) Restore(ctx context.Context, id string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Restore")

	if err := s.users.Restore(ctx, id); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)

	user, err := s.users.GetByIDWithDeleted(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "User restored").
		String("user_id", id).
		Log()

	view := dto.ToUserResponse(user)
	return &view, nil
}
