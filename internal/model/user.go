package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// User is one account. Password holds an argon2 hash once the record has
// been through the record manager; Password, RefreshToken and DeletedAt are
// never serialised.
type User struct {
	ID           string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        Email          `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_email" json:"email"`
	Name         string         `gorm:"column:name;type:text;not null" json:"name"`
	Password     string         `gorm:"column:password;type:text;not null" json:"-"`
	IsActive     bool           `gorm:"column:is_active;not null" json:"is_active"`
	RoleID       string         `gorm:"column:role_id;type:uuid;not null;index" json:"-"`
	Role         Role           `gorm:"foreignKey:RoleID;references:ID" json:"role"`
	RefreshToken *string        `gorm:"column:refresh_token;type:text" json:"-"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt    *time.Time     `gorm:"column:updated_at;type:timestamptz;autoUpdateTime:false" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;type:timestamptz;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserOption sets one attribute during NewUser.
type UserOption func(*User)

// NewUser applies opts over the declared defaults (inactive, never updated,
// not deleted). It performs no hashing and touches no storage.
func NewUser(opts ...UserOption) *User {
	u := &User{
		IsActive:  false,
		UpdatedAt: nil,
		DeletedAt: gorm.DeletedAt{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func WithID(id string) UserOption {
	return func(u *User) { u.ID = id }
}

func WithEmail(email string) UserOption {
	return func(u *User) { u.Email = Email(email) }
}

func WithName(name string) UserOption {
	return func(u *User) { u.Name = name }
}

func WithPassword(password string) UserOption {
	return func(u *User) { u.Password = password }
}

func WithActive(active bool) UserOption {
	return func(u *User) { u.IsActive = active }
}

func WithRoleID(roleID string) UserOption {
	return func(u *User) { u.RoleID = roleID }
}

func WithRole(role Role) UserOption {
	return func(u *User) {
		u.Role = role
		u.RoleID = role.ID
	}
}

func WithRefreshToken(token string) UserOption {
	return func(u *User) { u.RefreshToken = &token }
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt.Valid
}

// Initial is the first letter of the display name, upper-cased; used when no
// avatar image exists.
func (u *User) Initial() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ToUpper(string(r))
}
