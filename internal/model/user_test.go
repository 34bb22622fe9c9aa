package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" User@Example.com ", "user@example.com"},
		{"A@B.com ", "a@b.com"},
		{"a@b.com", "a@b.com"},
		{"\tMIXED@Case.ORG\n", "mixed@case.org"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeEmail_Idempotent(t *testing.T) {
	inputs := []string{
		" User@Example.com ", "ÉLODIE@exemple.fr", "  \t", "x", "Ünïcödé@DOMAIN.de ",
		"already@normal.io", " a.b+tag@Sub.Example.CO.UK",
	}

	for _, e := range inputs {
		once := NormalizeEmail(e)
		assert.Equal(t, once, NormalizeEmail(once), "input %q", e)
	}
}

func TestEmail_ValueNormalizes(t *testing.T) {
	v, err := Email(" Someone@Example.COM ").Value()
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", v)
}

func TestEmail_Scan(t *testing.T) {
	var e Email
	require.NoError(t, e.Scan("a@b.com"))
	assert.Equal(t, Email("a@b.com"), e)

	require.NoError(t, e.Scan([]byte("c@d.com")))
	assert.Equal(t, Email("c@d.com"), e)

	require.NoError(t, e.Scan(nil))
	assert.Equal(t, Email(""), e)

	assert.Error(t, e.Scan(42))
}

func TestNewUser_Defaults(t *testing.T) {
	u := NewUser()

	assert.False(t, u.IsActive)
	assert.Nil(t, u.UpdatedAt)
	assert.False(t, u.DeletedAt.Valid)
	assert.False(t, u.IsDeleted())
	assert.Empty(t, u.Password)
	assert.Nil(t, u.RefreshToken)
}

func TestNewUser_AppliesSuppliedFieldsOnly(t *testing.T) {
	role := Role{ID: "0b6f8f0e-7b43-4bb3-9d3b-6f1b7a1f7b10", Name: "user"}

	u := NewUser(
		WithEmail(" User@Example.com "),
		WithPassword("secret123"),
		WithName("Ada"),
		WithRole(role),
	)

	// Construction does not normalise or hash.
	assert.Equal(t, Email(" User@Example.com "), u.Email)
	assert.Equal(t, "secret123", u.Password)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, role.ID, u.RoleID)
	assert.Equal(t, "user", u.Role.Name)
	assert.False(t, u.IsActive)
	assert.Nil(t, u.UpdatedAt)
}

func TestUser_JSONOmitsSecrets(t *testing.T) {
	now := time.Now().UTC()
	u := NewUser(
		WithID("6a1f4f5e-8f3c-4a87-8e2e-1a8d0e5bb001"),
		WithEmail("a@b.com"),
		WithPassword("$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$a2V5"),
		WithRefreshToken("refresh-me"),
	)
	u.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	u.UpdatedAt = &now

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "refresh_token")
	assert.NotContains(t, fields, "deleted_at")
	assert.NotContains(t, fields, "Password")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "updated_at")
}

func TestUser_Initial(t *testing.T) {
	assert.Equal(t, "A", (&User{Name: "ada"}).Initial())
	assert.Equal(t, "É", (&User{Name: "  élodie"}).Initial())
	assert.Equal(t, "", (&User{Name: " "}).Initial())
}

func TestRole_Permissions(t *testing.T) {
	role, err := NewRole("admin", "everything", "*")
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	assert.True(t, role.Can("users:delete"))

	role, err = NewRole("user", "read only", "factbook:read")
	require.NoError(t, err)
	assert.True(t, role.Can("factbook:read"))
	assert.False(t, role.Can("users:delete"))

	empty := &Role{}
	perms, err := empty.PermissionList()
	require.NoError(t, err)
	assert.Nil(t, perms)
}
