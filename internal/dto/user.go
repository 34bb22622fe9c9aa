package dto

import (
	"time"

	"github.com/Payphone-Digital/factbook/internal/model"
)

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUserRequest carries optional fields; nil means unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"is_active"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserResponse is the public view of a user. Password, refresh token and
// deletion time are never part of it.
type UserResponse struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	IsActive  bool          `json:"is_active"`
	Role      *RoleResponse `json:"role,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at"`
}

func ToUserResponse(u *model.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email.String(),
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Role.ID != "" {
		resp.Role = &RoleResponse{ID: u.Role.ID, Name: u.Role.Name}
	}
	return resp
}

func ToUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToUserResponse(&users[i]))
	}
	return out
}

// HeaderResponse feeds the layout header: a name plus either an avatar URL or
// the initial to draw instead.
type HeaderResponse struct {
	Name      string `json:"name"`
	Initial   string `json:"initial"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type AvatarURLResponse struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}
