package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Payphone-Digital/factbook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToUserResponse_OmitsSecrets(t *testing.T) {
	u := model.NewUser(
		model.WithID("6a1f4f5e-8f3c-4a87-8e2e-1a8d0e5bb001"),
		model.WithEmail("a@b.com"),
		model.WithName("Ada"),
		model.WithPassword("$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$a2V5"),
		model.WithRefreshToken("refresh"),
		model.WithRole(model.Role{ID: "0b6f8f0e-7b43-4bb3-9d3b-6f1b7a1f7b10", Name: "admin"}),
	)
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}

	raw, err := json.Marshal(ToUserResponse(u))
	require.NoError(t, err)

	body := string(raw)
	assert.NotContains(t, body, "argon2")
	assert.NotContains(t, body, "refresh")
	assert.NotContains(t, body, "deleted_at")
	assert.Contains(t, body, `"email":"a@b.com"`)
	assert.NotContains(t, body, "deleted")
	assert.Contains(t, body, `"name":"admin"`)
}

func TestToUserResponse_NoRole(t *testing.T) {
	resp := ToUserResponse(model.NewUser(model.WithEmail("a@b.com")))
	assert.Nil(t, resp.Role)
	assert.Nil(t, resp.UpdatedAt)
}
