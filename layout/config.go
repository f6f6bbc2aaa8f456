package layout

import "sync/atomic"

// Config holds tuning knobs for layout heuristics.
type Config struct {
	// SmallDimThreshold is the size at or below which a dimension is too
	// short to be worth iterating along, even when its stride is smallest.
	// A good value depends on the cache size; 0 means the default (63).
	SmallDimThreshold int
}

const defaultSmallDimThreshold = 63

var current atomic.Pointer[Config]

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{SmallDimThreshold: defaultSmallDimThreshold}
}

// CurrentConfig returns the configuration in effect.
func CurrentConfig() Config {
	if c := current.Load(); c != nil {
		return *c
	}
	return DefaultConfig()
}

// SetConfig replaces the package configuration. Zero fields take defaults.
func SetConfig(cfg Config) {
	if cfg.SmallDimThreshold <= 0 {
		cfg.SmallDimThreshold = defaultSmallDimThreshold
	}
	current.Store(&cfg)
}
