package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig(constants.EnvTest, zap.NewNop()))
	require.NoError(t, err)
	return db, mock
}

func expectSearchIndexes(mock sqlmock.Sqlmock) {
	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS pg_trgm")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, stmt := range searchIndexes {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestMigrate_RunsGooseWhenNotSynchronizing(t *testing.T) {
	db, mock := newMockDB(t)

	called := false
	orig := gooseUp
	gooseUp = func(context.Context, *sql.DB) error {
		called = true
		return nil
	}
	t.Cleanup(func() { gooseUp = orig })

	expectSearchIndexes(mock)

	require.NoError(t, Migrate(context.Background(), db, false, zap.NewNop()))
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_GooseFailureStops(t *testing.T) {
	db, mock := newMockDB(t)

	orig := gooseUp
	gooseUp = func(context.Context, *sql.DB) error { return errors.New("dirty") }
	t.Cleanup(func() { gooseUp = orig })

	err := Migrate(context.Background(), db, false, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goose up")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSearchIndexes_SkipsTrigramWithoutExtension(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS pg_trgm")).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectExec(regexp.QuoteMeta(searchIndexes[2])).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSearchIndexes(context.Background(), db, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordingSeeder struct {
	roles []*model.Role
	err   error
}

func (r *recordingSeeder) EnsureRoles(_ context.Context, roles ...*model.Role) error {
	r.roles = roles
	return r.err
}

func TestSeed_DefaultRoles(t *testing.T) {
	seeder := &recordingSeeder{}
	require.NoError(t, Seed(context.Background(), seeder, zap.NewNop()))

	require.Len(t, seeder.roles, 2)
	assert.Equal(t, constants.RoleAdmin, seeder.roles[0].Name)
	assert.True(t, seeder.roles[0].Can("users:delete"))
	assert.Equal(t, constants.RoleUser, seeder.roles[1].Name)
	assert.False(t, seeder.roles[1].Can("users:delete"))

	seeder.err = errors.New("conn reset")
	assert.Error(t, Seed(context.Background(), seeder, zap.NewNop()))
}

func TestPoolStatsAndPing(t *testing.T) {
	db, _ := newMockDB(t)

	require.NoError(t, Ping(context.Background(), db))
	stats := PoolStats(db)
	assert.Contains(t, stats, "open_connections")
}
