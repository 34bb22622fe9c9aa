package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/dto"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/gin-gonic/gin"
)

// UserService is implemented by *service.UserService.
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	GetAll(ctx context.Context, page constants.PaginationParams, search string, includeDeleted bool) ([]dto.UserResponse, int64, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	UpdatePassword(ctx context.Context, id string, req *dto.UpdatePasswordRequest) error
	Delete(ctx context.Context, id, actorID string) error
	Restore(ctx context.Context, id string) (*dto.UserResponse, error)
}

// AvatarService is implemented by *service.AvatarService.
type AvatarService interface {
	DownloadURL(ctx context.Context, userID string) (*dto.AvatarURLResponse, error)
	UploadURL(ctx context.Context, userID, contentType string) (*dto.AvatarURLResponse, error)
	Header(ctx context.Context, userID string) (*dto.HeaderResponse, error)
}

type UserHandler struct {
	users   UserService
	avatars AvatarService
	log     *logger.ContextLogger
}

func NewUserHandler(users UserService, avatars AvatarService, log *logger.ContextLogger) *UserHandler {
	return &UserHandler{users: users, avatars: avatars, log: log}
}

func (h *UserHandler) GetAll(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetAll")

	pagination := constants.ParsePaginationParams(c)
	search := c.DefaultQuery(constants.QueryParamSearch, constants.DefaultSearch)
	includeDeleted, _ := strconv.ParseBool(c.Query(constants.QueryParamIncludeDeleted))

	h.log.Info(ctx, "Get all users request").
		Int("page", pagination.Page).
		Int("limit", pagination.Limit).
		String("search", search).
		Bool("include_deleted", includeDeleted).
		Log()

	res, total, err := h.users.GetAll(ctx, pagination, search, includeDeleted)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to fetch users", err)
		return
	}

	pageTotal := constants.PageTotal(total, pagination.Limit)
	h.log.Info(ctx, "Users fetched successfully").
		Int64("total", total).
		Int("page_total", pageTotal).
		Int("returned_count", len(res)).
		Log()

	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, res))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetByID")

	id, ok := userIDParam(c, ctx, h.log)
	if !ok {
		return
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to fetch user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Create")

	var req dto.CreateUserRequest
	if !bindJSON(c, ctx, h.log, &req) {
		return
	}

	h.log.Info(ctx, "Create user request").
		String("role", req.Role).
		Log()

	user, err := h.users.Create(ctx, &req)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to create user", err)
		return
	}

	h.log.Info(ctx, "User created successfully").
		String("user_id", user.ID).
		Log()

	c.JSON(http.StatusCreated, constants.BuildDataResponse(constants.MsgUserCreated, user))
}

func (h *UserHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Update")

	id, ok := userIDParam(c, ctx, h.log)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, ctx, h.log, &req) {
		return
	}

	user, err := h.users.Update(ctx, id, &req)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to update user", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgUserUpdated, user))
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UpdatePassword")

	id, ok := userIDParam(c, ctx, h.log)
	if !ok {
		return
	}

	var req dto.UpdatePasswordRequest
	if !bindJSON(c, ctx, h.log, &req) {
		return
	}

	if err := h.users.UpdatePassword(ctx, id, &req); err != nil {
		abortWithError(c, ctx, h.log, "Failed to update password", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgPasswordSet))
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Delete")

	id, ok := userIDParam(c, ctx, h.log)
	if !ok {
		return
	}

	actorID := currentUserID(c)
	h.log.Info(ctx, "Delete user request").
		String("target_user_id", id).
		String("requesting_user_id", actorID).
		Log()

	if err := h.users.Delete(ctx, id, actorID); err != nil {
		abortWithError(c, ctx, h.log, "Failed to delete user", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgUserDeleted))
}

func (h *UserHandler) Restore(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Restore")

	id, ok := userIDParam(c, ctx, h.log)
	if !ok {
		return
	}

	user, err := h.users.Restore(ctx, id)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to restore user", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(constants.MsgUserRestored, user))
}

func (h *UserHandler) GetAvatar(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetAvatar")

	id, ok := userIDParam(c, ctx, h.log)
	if !ok {
		return
	}

	url, err := h.avatars.DownloadURL(ctx, id)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to fetch avatar", err)
		return
	}

	c.JSON(http.StatusOK, url)
}

func (h *UserHandler) CreateAvatarUpload(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "CreateAvatarUpload")

	id, ok := userIDParam(c, ctx, h.log)
	if !ok {
		return
	}

	var req dto.AvatarUploadRequest
	if !bindJSON(c, ctx, h.log, &req) {
		return
	}

	url, err := h.avatars.UploadURL(ctx, id, req.ContentType)
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to issue avatar upload URL", err)
		return
	}

	c.JSON(http.StatusCreated, url)
}

// Header returns the layout header for the authenticated user.
func (h *UserHandler) Header(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Header")

	header, err := h.avatars.Header(ctx, currentUserID(c))
	if err != nil {
		abortWithError(c, ctx, h.log, "Failed to build header", err)
		return
	}

	c.JSON(http.StatusOK, header)
}
