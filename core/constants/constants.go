package constants

import "time"

// General timeouts
const (
	DefaultTimeout    = 30 * time.Second
	HTTPClientTimeout = 10 * time.Second
	SyncRunTimeout    = 2 * time.Minute
)

// Token lifecycle
const (
	// TokenRefreshBuffer keeps a token from being used at the very edge of
	// validity; it absorbs clock skew and in-flight request latency.
	TokenRefreshBuffer = 5 * time.Minute
	DefaultTokenTTL    = time.Hour
)

// Provider call retry policy (transient failures only)
const (
	ProviderMaxAttempts    = 3
	ProviderInitialBackoff = 500 * time.Millisecond
)

// Pull-phase listing window around "now"
const (
	SyncWindowPast   = 2 * 365 * 24 * time.Hour
	SyncWindowFuture = 2 * 365 * 24 * time.Hour
	SyncMaxResults   = 2500
)

// Database tuning
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Background queue
const (
	QueueConcurrency = 4
)

// Redis key prefixes
const (
	RedisKeySyncLock   = "calendar:sync:lock:"
	RedisKeySyncStatus = "calendar:sync:status:"
)

// Cache TTLs
const (
	SyncLockTTL   = 3 * time.Minute
	SyncStatusTTL = 24 * time.Hour
)
