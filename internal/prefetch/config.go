package prefetch

import "time"

// Config controls buffer sizing and background fetch behavior.
type Config struct {
	// Capacity is the maximum number of cached questions per
	// (category, difficulty) key.
	Capacity int

	// LowWater is the refill trigger: when cached plus in-flight
	// questions for a key drop below it, the buffer tops the key back
	// up to Capacity.
	LowWater int

	// MaxConcurrentFetches bounds simultaneous background supplier
	// calls across all keys.
	MaxConcurrentFetches int

	// RequestTimeout bounds each individual supplier call, live or
	// background.
	RequestTimeout time.Duration

	// RecentLimit bounds the recently-served question list passed to
	// the supplier as an exclusion hint.
	RecentLimit int
}

// DefaultConfig returns the standard buffer parameters.
func DefaultConfig() Config {
	return Config{
		Capacity:             10,
		LowWater:             3,
		MaxConcurrentFetches: 3,
		RequestTimeout:       10 * time.Second,
		RecentLimit:          10,
	}
}
