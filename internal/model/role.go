package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Role groups permissions; users reference exactly one.
type Role struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;type:text;not null;uniqueIndex:idx_roles_name" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Permissions datatypes.JSON `gorm:"column:permissions;type:jsonb" json:"permissions,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
	UpdatedAt   *time.Time     `gorm:"column:updated_at;type:timestamptz;autoUpdateTime:false" json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// NewRole builds a role with a fresh id.
func NewRole(name, description string, permissions ...string) (*Role, error) {
	if permissions == nil {
		permissions = []string{}
	}
	raw, err := json.Marshal(permissions)
	if err != nil {
		return nil, err
	}

	return &Role{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Permissions: datatypes.JSON(raw),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// PermissionList decodes Permissions. A null or empty column yields nil.
func (r *Role) PermissionList() ([]string, error) {
	if len(r.Permissions) == 0 || string(r.Permissions) == "null" {
		return nil, nil
	}
	var perms []string
	if err := json.Unmarshal(r.Permissions, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// Can reports whether the role grants permission.
func (r *Role) Can(permission string) bool {
	perms, err := r.PermissionList()
	if err != nil {
		return false
	}
	for _, p := range perms {
		if p == permission || p == "*" {
			return true
		}
	}
	return false
}
