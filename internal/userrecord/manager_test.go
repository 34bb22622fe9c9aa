package userrecord

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/model"
	"github.com/Payphone-Digital/factbook/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHasher struct {
	calls int
	err   error
}

func (h *countingHasher) Hash(_ context.Context, plain string) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$" + base64.RawStdEncoding.EncodeToString([]byte(plain)), nil
}

func newTestManager(h PasswordHasher) *Manager {
	m := NewManager(h)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func realHasher() *password.Hasher {
	return password.NewHasher(password.Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}, nil)
}

func TestPrepareForInsert_NormalizesAndHashes(t *testing.T) {
	m := newTestManager(realHasher())
	u := m.Construct(
		model.WithEmail(" User@Example.com "),
		model.WithPassword("secret123"),
	)

	require.NoError(t, m.PrepareForInsert(context.Background(), u))

	assert.Equal(t, model.Email("user@example.com"), u.Email)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, strings.HasPrefix(u.Password, "$argon2"))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), u.CreatedAt)
	assert.False(t, u.IsActive)
	assert.Nil(t, u.UpdatedAt)
	assert.False(t, u.IsDeleted())

	ok, err := password.Verify(u.Password, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrepareForInsert_KeepsSuppliedIDAndCreatedAt(t *testing.T) {
	m := newTestManager(&countingHasher{})
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	u := m.Construct(model.WithID("6a1f4f5e-8f3c-4a87-8e2e-1a8d0e5bb001"), model.WithEmail("a@b.com"))
	u.CreatedAt = created

	require.NoError(t, m.PrepareForInsert(context.Background(), u))

	assert.Equal(t, "6a1f4f5e-8f3c-4a87-8e2e-1a8d0e5bb001", u.ID)
	assert.Equal(t, created, u.CreatedAt)
}

func TestPrepareForInsert_RejectsMalformedID(t *testing.T) {
	m := newTestManager(&countingHasher{})
	u := m.Construct(model.WithID("not-a-uuid"), model.WithEmail("a@b.com"))

	err := m.PrepareForInsert(context.Background(), u)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPrepare_AlreadyHashedIsUntouched(t *testing.T) {
	h := &countingHasher{}
	m := newTestManager(h)
	hashed := "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$a2V5"

	u := m.Construct(model.WithEmail("a@b.com"), model.WithPassword(hashed))
	require.NoError(t, m.PrepareForInsert(context.Background(), u))
	require.NoError(t, m.PrepareForUpdate(context.Background(), u))

	assert.Equal(t, hashed, u.Password)
	assert.Zero(t, h.calls)
}

func TestPrepareForUpdate_Idempotent(t *testing.T) {
	h := &countingHasher{}
	m := newTestManager(h)
	u := m.Construct(model.WithEmail("A@B.com"), model.WithPassword("secret123"))

	require.NoError(t, m.PrepareForUpdate(context.Background(), u))
	first := u.Password
	require.NoError(t, m.PrepareForUpdate(context.Background(), u))

	assert.Equal(t, first, u.Password)
	assert.Equal(t, 1, h.calls)
	assert.Equal(t, model.Email("a@b.com"), u.Email)
	require.NotNil(t, u.UpdatedAt)
}

func TestPrepare_EmptyPasswordIsNotHashed(t *testing.T) {
	h := &countingHasher{}
	m := newTestManager(h)
	u := m.Construct(model.WithEmail("a@b.com"))

	require.NoError(t, m.PrepareForInsert(context.Background(), u))
	require.NoError(t, m.PrepareForUpdate(context.Background(), u))

	assert.Empty(t, u.Password)
	assert.Zero(t, h.calls)
}

func TestPrepare_InvalidEmail(t *testing.T) {
	m := newTestManager(&countingHasher{})

	for _, email := range []string{"", "   ", "not-an-email", "a@", strings.Repeat("x", 250) + "@b.com"} {
		u := m.Construct(model.WithEmail(email), model.WithPassword("secret123"))

		err := m.PrepareForInsert(context.Background(), u)
		assert.True(t, apperrors.IsValidation(err), "insert %q", email)

		err = m.PrepareForUpdate(context.Background(), u)
		assert.True(t, apperrors.IsValidation(err), "update %q", email)
		assert.Equal(t, "secret123", u.Password)
	}
}

func TestPrepare_HashFailureLeavesPassword(t *testing.T) {
	m := newTestManager(&countingHasher{err: errors.New("out of memory")})
	u := m.Construct(model.WithEmail("a@b.com"), model.WithPassword("secret123"))

	err := m.PrepareForInsert(context.Background(), u)
	require.Error(t, err)
	assert.True(t, apperrors.IsHashingFailure(err))
	assert.Equal(t, "secret123", u.Password)

	err = m.PrepareForUpdate(context.Background(), u)
	assert.True(t, apperrors.IsHashingFailure(err))
	assert.Nil(t, u.UpdatedAt)
}

func TestPrepareForInsert_CancelledContext(t *testing.T) {
	m := newTestManager(realHasher())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := m.Construct(model.WithEmail("a@b.com"), model.WithPassword("secret123"))
	err := m.PrepareForInsert(ctx, u)

	assert.True(t, apperrors.IsHashingFailure(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNeedsHash(t *testing.T) {
	assert.False(t, NeedsHash(""))
	assert.False(t, NeedsHash("$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$a2V5"))
	assert.True(t, NeedsHash("$argon2id$v=19$rest"))
	assert.True(t, NeedsHash("$argon2-is-my-password"))
	assert.True(t, NeedsHash("secret123"))
	assert.True(t, NeedsHash("argon2 without dollar"))
}

func TestPrepare_PrefixedPlaintextIsHashed(t *testing.T) {
	m := newTestManager(realHasher())

	for _, plain := range []string{"$argon2-is-my-password", "$argon2id$v=19$not-a-hash"} {
		u := m.Construct(model.WithEmail("a@b.com"), model.WithPassword(plain))
		require.NoError(t, m.PrepareForInsert(context.Background(), u))

		assert.NotEqual(t, plain, u.Password)
		ok, err := password.Verify(u.Password, plain)
		require.NoError(t, err)
		assert.True(t, ok)

		u.Password = plain
		require.NoError(t, m.PrepareForUpdate(context.Background(), u))
		assert.NotEqual(t, plain, u.Password)
		assert.True(t, password.IsHashed(u.Password))
	}
}
