// Package userrecord guards the invariants every user row must satisfy at the
// moment it is written: a normalized, syntactically valid email and a password
// that is either empty or an argon2 hash. Repositories call PrepareForInsert
// and PrepareForUpdate inside the same transaction as the write.
package userrecord

import (
	"context"
	"time"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/model"
	"github.com/Payphone-Digital/factbook/pkg/password"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PasswordHasher produces an encoded one-way hash that password.IsHashed accepts.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
}

type Manager struct {
	hasher   PasswordHasher
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

func NewManager(hasher PasswordHasher) *Manager {
	return &Manager{
		hasher:   hasher,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Construct returns a user with opts applied over the defaults. No hashing,
// no normalization, no storage.
func (m *Manager) Construct(opts ...model.UserOption) *model.User {
	return model.NewUser(opts...)
}

// PrepareForInsert readies u for its first write: assigns an id and creation
// time when missing, normalizes and validates the email, and hashes a
// plaintext password. An already hashed password is kept as is.
func (m *Manager) PrepareForInsert(ctx context.Context, u *model.User) error {
	if err := m.checkEmail(u); err != nil {
		return err
	}

	if u.ID == "" {
		u.ID = m.newID()
	} else if err := uuid.Validate(u.ID); err != nil {
		return apperrors.NewValidationError("id", "must be a UUID")
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}

	return m.hashIfPlain(ctx, u)
}

// PrepareForUpdate readies u for a subsequent write. Calling it repeatedly
// never re-hashes a hashed password.
func (m *Manager) PrepareForUpdate(ctx context.Context, u *model.User) error {
	if err := m.checkEmail(u); err != nil {
		return err
	}

	if err := m.hashIfPlain(ctx, u); err != nil {
		return err
	}

	now := m.now()
	u.UpdatedAt = &now
	return nil
}

func (m *Manager) checkEmail(u *model.User) error {
	u.Email = u.Email.Normalized()
	if err := m.validate.Var(string(u.Email), "required,email,max=255"); err != nil {
		return apperrors.NewValidationError("email", "must be a valid email address")
	}
	return nil
}

func (m *Manager) hashIfPlain(ctx context.Context, u *model.User) error {
	if !NeedsHash(u.Password) {
		return nil
	}

	hashed, err := m.hasher.Hash(ctx, u.Password)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrHashingFailed, err)
	}
	if !password.IsHashed(hashed) {
		return apperrors.WrapError(apperrors.ErrHashingFailed, password.ErrInvalidHash)
	}

	u.Password = hashed
	return nil
}

// NeedsHash is the single plaintext-or-hash decision used on every write path.
func NeedsHash(value string) bool {
	return value != "" && !password.IsHashed(value)
}
