package constants

import "time"

// Application Information
const (
	AppName    = "Factbook Backend"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix   = "factbook:"
	CacheKeyUser     = CacheKeyPrefix + "user:"
	CacheKeyFactbook = CacheKeyPrefix + "page:"
)

// Role names seeded at startup
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Avatar objects live under this prefix in the S3 bucket.
const AvatarKeyPrefix = "avatars/"

const (
	DefaultRequestTimeout = 30 * time.Second
	ShutdownTimeout       = 10 * time.Second
)
