package utils

import "time"

// Storage backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Housekeeping intervals
const (
	CacheCleanupInterval = 5 * time.Minute
	LockSweepInterval    = 90 * time.Second
	LockIdleAfter        = 10 * time.Minute
)

// Discord response limits
const (
	DiscordResponseTimeout = 2 * time.Second
	DiscordMaxContent      = 2000
)

// GenericFailureMessage is shown when a command fails for reasons the player
// cannot fix.
const GenericFailureMessage = "Whoops! Error."
