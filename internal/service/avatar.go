package service

import (
	"context"
	"strings"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/dto"
	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/Payphone-Digital/factbook/pkg/storage"
)

// ObjectStorage is implemented by *storage.ObjectStore.
type ObjectStorage interface {
	Exists(ctx context.Context, key string) (bool, error)
	PresignGet(ctx context.Context, key string) (*storage.PresignedURL, error)
	PresignPut(ctx context.Context, key, contentType string) (*storage.PresignedURL, error)
}

var avatarContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// AvatarService hands out presigned URLs for avatar images stored under
// avatars/<user-id> and builds the layout header view.
type AvatarService struct {
	objects ObjectStorage
	users   UserStore
	log     *logger.ContextLogger
}

func NewAvatarService(objects ObjectStorage, users UserStore, log *logger.ContextLogger) *AvatarService {
	return &AvatarService{objects: objects, users: users, log: log}
}

func AvatarKey(userID string) string {
	return constants.AvatarKeyPrefix + userID
}

// DownloadURL returns a presigned GET for the user's avatar, or
// ErrAvatarNotFound when none was uploaded.
func (s *AvatarService) DownloadURL(ctx context.Context, userID string) (*dto.AvatarURLResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "AvatarDownloadURL")

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	exists, err := s.objects.Exists(ctx, AvatarKey(userID))
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}
	if !exists {
		return nil, apperrors.ErrAvatarNotFound
	}

	url, err := s.objects.PresignGet(ctx, AvatarKey(userID))
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return toAvatarURL(url), nil
}

func (s *AvatarService) UploadURL(ctx context.Context, userID, contentType string) (*dto.AvatarURLResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "AvatarUploadURL")

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !avatarContentTypes[contentType] {
		return nil, apperrors.NewValidationError("content_type", "must be png, jpeg, webp or gif")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	url, err := s.objects.PresignPut(ctx, AvatarKey(userID), contentType)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.log.Info(ctx, "Avatar upload URL issued").
		String("user_id", userID).
		String("content_type", contentType).
		Log()
	return toAvatarURL(url), nil
}

// Header builds the layout header for userID. A storage outage only drops
// the avatar URL; the initial is always present.
func (s *AvatarService) Header(ctx context.Context, userID string) (*dto.HeaderResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Header")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	header := &dto.HeaderResponse{
		Name:    user.Name,
		Initial: user.Initial(),
	}

	exists, err := s.objects.Exists(ctx, AvatarKey(userID))
	if err != nil {
		s.log.Warn(ctx, "Avatar lookup failed, falling back to initial").
			String("user_id", userID).
			Err(err).
			Log()
		return header, nil
	}
	if exists {
		if url, err := s.objects.PresignGet(ctx, AvatarKey(userID)); err == nil {
			header.AvatarURL = url.URL
		}
	}
	return header, nil
}

func toAvatarURL(u *storage.PresignedURL) *dto.AvatarURLResponse {
	return &dto.AvatarURLResponse{URL: u.URL, Method: u.Method, ExpiresAt: u.ExpiresAt}
}
