package password

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastParams() Params {
	return Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
}

func TestHash_HasPrefixAndDiffersFromPlain(t *testing.T) {
	h := NewHasher(fastParams(), nil)

	for _, plain := range []string{"secret123", "a", "pässwörd", strings.Repeat("x", 200)} {
		encoded, err := h.Hash(context.Background(), plain)
		require.NoError(t, err)

		assert.True(t, IsHashed(encoded), encoded)
		assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))
		assert.NotEqual(t, plain, encoded)
	}
}

func TestHash_SaltsEachCall(t *testing.T) {
	h := NewHasher(fastParams(), nil)

	a, err := h.Hash(context.Background(), "secret123")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_Empty(t *testing.T) {
	h := NewHasher(fastParams(), nil)

	_, err := h.Hash(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestHash_SaltFailure(t *testing.T) {
	h := NewHasher(fastParams(), nil)
	h.salt = func([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

	_, err := h.Hash(context.Background(), "secret123")
	assert.ErrorIs(t, err, errSaltGenerator)
}

func TestHash_CancelledContext(t *testing.T) {
	h := NewHasher(fastParams(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "secret123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerify(t *testing.T) {
	h := NewHasher(fastParams(), nil)
	encoded, err := h.Hash(context.Background(), "secret123")
	require.NoError(t, err)

	ok, err := Verify(encoded, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(encoded, "secret124")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	tests := []string{
		"",
		"secret123",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
	}

	for _, encoded := range tests {
		_, err := Verify(encoded, "secret123")
		assert.Error(t, err, encoded)
	}
}

func TestIsHashed(t *testing.T) {
	assert.True(t, IsHashed("$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$a2V5"))
	assert.False(t, IsHashed("$argon2id$v=19$..."))
	assert.False(t, IsHashed("$argon2i$anything"))
	assert.False(t, IsHashed("$argon2-is-my-password"))
	assert.False(t, IsHashed("$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$"))
	assert.False(t, IsHashed("argon2id"))
	assert.False(t, IsHashed(" $argon2id"))
	assert.False(t, IsHashed(""))
}
