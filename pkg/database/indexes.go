package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// searchIndexes back the ILIKE search on users. pg_trgm may be unavailable
// on managed instances, in which case search falls back to sequential scans.
var searchIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_users_name_trgm ON users USING GIN (name gin_trgm_ops)",
	"CREATE INDEX IF NOT EXISTS idx_users_email_trgm ON users USING GIN (email gin_trgm_ops)",
	"CREATE INDEX IF NOT EXISTS idx_users_created_at_email ON users (created_at, email) WHERE deleted_at IS NULL",
}

// EnsureSearchIndexes creates the list and search indexes. A missing pg_trgm
// extension is logged and skipped.
func EnsureSearchIndexes(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	db = db.WithContext(ctx)

	trigram := true
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		log.Warn("pg_trgm unavailable, skipping trigram indexes", zap.Error(err))
		trigram = false
	}

	created := 0
	for i, stmt := range searchIndexes {
		if !trigram && i < 2 {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		created++
	}

	log.Debug("Search indexes ensured", zap.Int("count", created))
	return nil
}
