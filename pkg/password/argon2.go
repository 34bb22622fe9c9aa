// Package password implements the one-way credential hash used for user
// records. Hashes are argon2id in the PHC string format, so every stored value
// starts with Prefix.
package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Prefix marks a value as already hashed.
const Prefix = "$argon2id$"

var (
	ErrEmpty         = errors.New("password is empty")
	ErrInvalidHash   = errors.New("encoded hash is not in the expected format")
	ErrIncompatible  = errors.New("incompatible argon2 version")
	errSaltGenerator = errors.New("failed to generate salt")
)

type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams: 64 MiB, three passes, four lanes.
func DefaultParams() Params {
	return Params{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Runner executes a job off the caller's goroutine with bounded concurrency.
type Runner interface {
	Run(ctx context.Context, job func() error) error
}

type inline struct{}

func (inline) Run(ctx context.Context, job func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return job()
}

type Hasher struct {
	params Params
	runner Runner
	salt   func([]byte) (int, error)
}

// NewHasher returns a Hasher that schedules work on runner. A nil runner runs
// hashes on the calling goroutine.
func NewHasher(params Params, runner Runner) *Hasher {
	if runner == nil {
		runner = inline{}
	}
	return &Hasher{params: params, runner: runner, salt: rand.Read}
}

// IsHashed reports whether value is a well-formed encoded hash. A plaintext
// that merely starts with Prefix is not.
func IsHashed(value string) bool {
	if !strings.HasPrefix(value, Prefix) {
		return false
	}
	_, _, _, err := decode(value)
	return err == nil
}

// Hash derives an encoded argon2id hash of plain.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}

	var encoded string
	err := h.runner.Run(ctx, func() error {
		salt := make([]byte, h.params.SaltLen)
		if _, err := h.salt(salt); err != nil {
			return fmt.Errorf("%w: %v", errSaltGenerator, err)
		}

		key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
		encoded = encode(h.params, salt, key)
		return nil
	})
	if err != nil {
		return "", err
	}
	return encoded, nil
}

// Verify reports whether plain matches encoded.
func Verify(encoded, plain string) (bool, error) {
	params, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey([]byte(plain), salt, params.Time, params.Memory, params.Threads, params.KeyLen)
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func encode(p Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatible
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrInvalidHash
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
