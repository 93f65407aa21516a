// internal/workers/loan/fund-loan/config.go
package fundloan

import (
	"time"

	"loan-orchestrator/internal/common/config"
)

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
