package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Payphone-Digital/factbook/internal/model"
	"github.com/Payphone-Digital/factbook/pkg/database/migrations"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gooseUp is swapped out in tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Migrate brings the schema up to date. With synchronize set the schema is
// derived from the models, otherwise the embedded SQL migrations run. Search
// indexes are applied afterwards either way.
func Migrate(ctx context.Context, db *gorm.DB, synchronize bool, log *zap.Logger) error {
	if synchronize {
		log.Warn("Synchronizing schema from models")
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := gooseUp(ctx, sqlDB); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		log.Info("Migrations applied")
	}

	return EnsureSearchIndexes(ctx, db, log)
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
	)
}
