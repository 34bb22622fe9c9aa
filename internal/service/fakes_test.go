package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/model"
	"github.com/Payphone-Digital/factbook/internal/repository"
	"github.com/Payphone-Digital/factbook/internal/userrecord"
	"github.com/Payphone-Digital/factbook/pkg/password"
	"github.com/Payphone-Digital/factbook/pkg/redis"
	"github.com/Payphone-Digital/factbook/pkg/storage"
	"gorm.io/gorm"
)

var testHasher = password.NewHasher(password.Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}, nil)

// memoryUsers mimics the repository: it runs the record manager on writes,
// enforces email uniqueness and honours soft deletion.
type memoryUsers struct {
	mu      sync.Mutex
	records *userrecord.Manager
	rows    map[string]model.User
	err     error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{records: userrecord.NewManager(testHasher), rows: map[string]model.User{}}
}

func (m *memoryUsers) emailTaken(email model.Email, except string) bool {
	for id, u := range m.rows {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *memoryUsers) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := m.records.PrepareForInsert(ctx, u); err != nil {
		return err
	}
	if m.emailTaken(u.Email, "") {
		return apperrors.ErrEmailExists
	}
	m.rows[u.ID] = *u
	return nil
}

func (m *memoryUsers) Update(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cur, ok := m.rows[u.ID]
	if !ok || cur.DeletedAt.Valid {
		return apperrors.ErrUserNotFound
	}
	if err := m.records.PrepareForUpdate(ctx, u); err != nil {
		return err
	}
	if m.emailTaken(u.Email, u.ID) {
		return apperrors.ErrEmailExists
	}
	u.DeletedAt = cur.DeletedAt
	m.rows[u.ID] = *u
	return nil
}

func (m *memoryUsers) get(id string, withDeleted bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.rows[id]
	if !ok || (u.DeletedAt.Valid && !withDeleted) {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	return m.get(id, false)
}

func (m *memoryUsers) GetByIDWithDeleted(_ context.Context, id string) (*model.User, error) {
	return m.get(id, true)
}

func (m *memoryUsers) GetAll(_ context.Context, f repository.ListFilter) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.rows {
		if u.DeletedAt.Valid && !f.IncludeDeleted {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *memoryUsers) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok || u.DeletedAt.Valid {
		return apperrors.ErrUserNotFound
	}
	now := time.Now()
	u.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	u.UpdatedAt = &now
	m.rows[id] = u
	return nil
}

func (m *memoryUsers) Restore(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok || !u.DeletedAt.Valid {
		return apperrors.ErrUserNotFound
	}
	u.DeletedAt = gorm.DeletedAt{}
	m.rows[id] = u
	return nil
}

type memoryRoles map[string]model.Role

func newMemoryRoles() memoryRoles {
	return memoryRoles{
		"admin": {ID: "11111111-1111-4111-8111-111111111111", Name: "admin"},
		"user":  {ID: "22222222-2222-4222-8222-222222222222", Name: "user"},
	}
}

func (r memoryRoles) GetByName(_ context.Context, name string) (*model.Role, error) {
	role, ok := r[name]
	if !ok {
		return nil, apperrors.ErrRoleNotFound
	}
	return &role, nil
}

type fakeObjects struct {
	present   map[string]bool
	existsErr error
}

func (f *fakeObjects) Exists(_ context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.present[key], nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://s3.test/" + key + "?sig=get", Method: "GET"}, nil
}

func (f *fakeObjects) PresignPut(_ context.Context, key, _ string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://s3.test/" + key + "?sig=put", Method: "PUT"}, nil
}

type memoryJSON struct {
	data map[string][]byte
	err  error
	sets int
}

func (m *memoryJSON) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.sets++
	return nil
}

func (m *memoryJSON) GetJSON(_ context.Context, key string, dest any) error {
	if m.err != nil {
		return m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryJSON) Delete(_ context.Context, keys ...string) error {
	if m.err != nil {
		return m.err
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
