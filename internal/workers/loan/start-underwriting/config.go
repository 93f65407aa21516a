// internal/workers/loan/start-underwriting/config.go
package startunderwriting

import (
	"time"

	"loan-orchestrator/internal/common/config"
)

// Config for the underwriting worker. The fan-out waits on up to six
// downstream calls with retries, so the default timeout is longer.
type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	c := &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		MaxJobsActive: wc.MaxJobsActive,
	}
	if c.Timeout < 2*time.Minute {
		c.Timeout = 2 * time.Minute
	}
	return c
}
