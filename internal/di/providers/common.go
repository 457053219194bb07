package providers

import "time"

const (
	// clientInitTimeout bounds remote client construction at startup.
	clientInitTimeout = 15 * time.Second

	// limiterIdleTTL is how long an unused per-scope limiter is kept.
	limiterIdleTTL = 10 * time.Minute
)
