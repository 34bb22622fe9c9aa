package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AWS       AWSConfig
	RateLimit RateLimitConfig
	Factbook  FactbookConfig
	Security  SecurityConfig
}

type AppConfig struct {
	Name        string `validate:"required"`
	Environment string `validate:"required,oneof=development staging production test"`
	Host        string `validate:"required"`
	Port        int    `validate:"required,min=1,max=65535"`
	SentryDSN   string
}

type DatabaseConfig struct {
	Host        string `validate:"required"`
	Port        int    `validate:"required,min=1,max=65535"`
	Name        string `validate:"required"`
	User        string `validate:"required"`
	Password    string `validate:"required"`
	SSLMode     string `validate:"required"`
	Synchronize bool
}

type JWTConfig struct {
	Secret     string        `validate:"required"`
	Expiration time.Duration `validate:"required,gt=0"`
}

type AWSConfig struct {
	AccessKeyID     string        `validate:"required"`
	SecretAccessKey string        `validate:"required"`
	Region          string        `validate:"required"`
	Bucket          string        `validate:"required"`
	Endpoint        string        // minio / localstack override
	AvatarURLTTL    time.Duration `validate:"gt=0"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	Database int
	TTL      time.Duration
}

type RateLimitConfig struct {
	Request  int `validate:"gt=0"`
	Duration int `validate:"gt=0"`
}

type FactbookConfig struct {
	DataDir  string        `validate:"required"`
	CacheTTL time.Duration `validate:"gt=0"`
}

type SecurityConfig struct {
	HashWorkers int `validate:"gt=0"`
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; the environment may already carry every key.
	_ = godotenv.Load()

	return LoadFromEnv(os.LookupEnv)
}

// LoadFromEnv builds a Config from lookup. Every missing required key and every
// malformed typed value is reported together in the returned error.
func LoadFromEnv(lookup func(string) (string, bool)) (*Config, error) {
	r := &envReader{lookup: lookup}

	config := &Config{
		App: AppConfig{
			Name:        r.str("APP_NAME", "factbook-backend"),
			Environment: r.str("NODE_ENV", ""),
			Host:        r.str("BACKEND_HOST", ""),
			Port:        r.integer("BACKEND_PORT", 0),
			SentryDSN:   r.str("SENTRY_DSN", ""),
		},
		Database: DatabaseConfig{
			Host:        r.str("POSTGRES_HOST", ""),
			Port:        r.integer("POSTGRES_PORT", 0),
			Name:        r.str("POSTGRES_DB", ""),
			User:        r.str("POSTGRES_USERNAME", ""),
			Password:    r.str("POSTGRES_PASSWORD", ""),
			SSLMode:     r.str("POSTGRES_SSLMODE", "disable"),
			Synchronize: r.boolean("SYNCHRONIZE_DB", false),
		},
		Redis: RedisConfig{
			Enabled:  r.boolean("REDIS_ENABLED", false),
			Host:     r.str("REDIS_HOST", "localhost"),
			Port:     r.integer("REDIS_PORT", 6379),
			Password: r.str("REDIS_PASSWORD", ""),
			Database: r.integer("REDIS_DB", 0),
			TTL:      r.duration("REDIS_TTL", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:     r.str("ACCESS_TOKEN_SECRET", ""),
			Expiration: r.duration("ACCESS_TOKEN_EXPIRATION", 0),
		},
		AWS: AWSConfig{
			AccessKeyID:     r.str("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: r.str("AWS_SECRET_ACCESS_KEY", ""),
			Region:          r.str("AWS_REGION", ""),
			Bucket:          r.str("S3_BUCKET_NAME", ""),
			Endpoint:        r.str("S3_ENDPOINT", ""),
			AvatarURLTTL:    r.duration("AVATAR_URL_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Request:  r.integer("RATE_LIMIT_MAX_REQUEST", 60),
			Duration: r.integer("RATE_LIMIT_DURATION", 60),
		},
		Factbook: FactbookConfig{
			DataDir:  r.str("FACTBOOK_DATA_DIR", "./page-data"),
			CacheTTL: r.duration("FACTBOOK_CACHE_TTL", 10*time.Minute),
		},
		Security: SecurityConfig{
			HashWorkers: r.integer("HASH_WORKERS", runtime.NumCPU()),
		},
	}

	if len(r.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(r.errs...))
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", describeValidation(err))
	}

	return config, nil
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// envKeys maps struct paths back to environment names for error messages.
var envKeys = map[string]string{
	"Config.App.Environment":      "NODE_ENV",
	"Config.App.Host":             "BACKEND_HOST",
	"Config.App.Port":             "BACKEND_PORT",
	"Config.Database.Host":        "POSTGRES_HOST",
	"Config.Database.Port":        "POSTGRES_PORT",
	"Config.Database.Name":        "POSTGRES_DB",
	"Config.Database.User":        "POSTGRES_USERNAME",
	"Config.Database.Password":    "POSTGRES_PASSWORD",
	"Config.JWT.Secret":           "ACCESS_TOKEN_SECRET",
	"Config.JWT.Expiration":       "ACCESS_TOKEN_EXPIRATION",
	"Config.AWS.AccessKeyID":      "AWS_ACCESS_KEY_ID",
	"Config.AWS.SecretAccessKey":  "AWS_SECRET_ACCESS_KEY",
	"Config.AWS.Region":           "AWS_REGION",
	"Config.AWS.Bucket":           "S3_BUCKET_NAME",
	"Config.AWS.AvatarURLTTL":     "AVATAR_URL_TTL",
	"Config.RateLimit.Request":    "RATE_LIMIT_MAX_REQUEST",
	"Config.RateLimit.Duration":   "RATE_LIMIT_DURATION",
	"Config.Factbook.DataDir":     "FACTBOOK_DATA_DIR",
	"Config.Factbook.CacheTTL":    "FACTBOOK_CACHE_TTL",
	"Config.Security.HashWorkers": "HASH_WORKERS",
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key, ok := envKeys[fe.Namespace()]
		if !ok {
			key = fe.Namespace()
		}
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is required", key))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q check", key, fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Helper functions

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) raw(key string) (string, bool) {
	value, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (r *envReader) str(key, defaultValue string) string {
	if value, ok := r.raw(key); ok {
		return value
	}
	return defaultValue
}

func (r *envReader) integer(key string, defaultValue int) int {
	value, ok := r.raw(key)
	if !ok {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return intValue
}

func (r *envReader) boolean(key string, defaultValue bool) bool {
	value, ok := r.raw(key)
	if !ok {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a boolean, got %q", key, value))
		return defaultValue
	}
	return boolValue
}

// duration accepts Go durations ("15m") and bare seconds ("900").
func (r *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value, ok := r.raw(key)
	if !ok {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a duration, got %q", key, value))
		return defaultValue
	}
	return d
}
