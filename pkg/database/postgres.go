package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/factbook/config"
	"github.com/Payphone-Digital/factbook/internal/constants"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// PoolConfig holds connection pool settings
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns sensible defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    50,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// GormConfig is shared by the server and the repository tests. Unique
// violations surface as gorm.ErrDuplicatedKey and writes that do not ask for
// a transaction run without one.
func GormConfig(environment string, log *zap.Logger) *gorm.Config {
	level := gormLogger.Warn
	switch environment {
	case constants.EnvDevelopment:
		level = gormLogger.Info
	case constants.EnvProduction, constants.EnvTest:
		level = gormLogger.Silent
	}

	return &gorm.Config{
		Logger: gormLogger.New(zap.NewStdLog(log.Named("gorm")), gormLogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// NewPostgresDB opens the pool and verifies it with a ping.
func NewPostgresDB(ctx context.Context, cfg *config.Config, pool PoolConfig, log *zap.Logger) (*gorm.DB, error) {
	startTime := time.Now()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseConnectionString()), GormConfig(cfg.App.Environment, log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Int("max_open_conns", pool.MaxOpenConns),
		zap.Int("max_idle_conns", pool.MaxIdleConns),
		zap.Duration("connection_time", time.Since(startTime)),
	)
	return db, nil
}

// Ping checks the pool; used by the health monitor.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PoolStats reports database/sql pool counters.
func PoolStats(db *gorm.DB) map[string]any {
	sqlDB, err := db.DB()
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	stats := sqlDB.Stats()
	return map[string]any{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration":    stats.WaitDuration.String(),
	}
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance for closing: %w", err)
		}

		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}
	return nil
}
