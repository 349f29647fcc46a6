package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tourbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Tax applied on top of the tier subtotal, in whole percent.
	DefaultTaxRatePercent = 18

	// Bounded retries for optimistic version conflicts on tours and rooms.
	DefaultVersionRetryMax = 3

	// Advisory lock TTL: long enough to cover a create flow, short enough
	// that a crashed request does not block a slot for long.
	DefaultSlotLockTTL = 10 * time.Second

	DefaultMaxParticipantsPerReservation = 50

	DefaultPurgeExpiredIntervalsOnRead = true

	DefaultPaginationLimit = 100
)
