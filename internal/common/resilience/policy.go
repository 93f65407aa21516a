package resilience

import (
	"time"

	"loan-orchestrator/internal/common/config"
)

// Config is applied uniformly to every gateway.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled             bool
	BreakerConsecutiveFailures uint32
	BreakerOpenTimeout         time.Duration
	BreakerHalfOpenMaxCalls    uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 2 * time.Second,
		RetryMaxBackoff:     8 * time.Second,
		RetryMultiplier:     2.0,

		BreakerEnabled:             true,
		BreakerConsecutiveFailures: 5,
		BreakerOpenTimeout:         30 * time.Second,
		BreakerHalfOpenMaxCalls:    1,
	}
}

func FromConfig(c config.ResilienceConfig) Config {
	return Config{
		RetryMaxAttempts:           c.RetryMaxAttempts,
		RetryInitialBackoff:        config.GetDuration(c.RetryInitialBackoff),
		RetryMaxBackoff:            config.GetDuration(c.RetryMaxBackoff),
		RetryMultiplier:            c.RetryMultiplier,
		BreakerEnabled:             c.BreakerEnabled,
		BreakerConsecutiveFailures: c.BreakerFailures,
		BreakerOpenTimeout:         config.GetDuration(c.BreakerOpenTimeout),
		BreakerHalfOpenMaxCalls:    c.BreakerHalfOpenMaxReq,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryInitialBackoff < 0 {
		out.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	if out.BreakerConsecutiveFailures == 0 {
		out.BreakerConsecutiveFailures = def.BreakerConsecutiveFailures
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}
