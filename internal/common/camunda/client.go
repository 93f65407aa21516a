// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client wraps the Zeebe gRPC client and owns the job workers opened on it.
type Client struct {
	client  zbc.Client
	config  ClientConfig
	logger  logger.Logger
	workers []worker.JobWorker
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	ConnectRetries         int
	ConnectRetryWait       time.Duration
}

// Connect creates the Zeebe client and waits for the broker topology,
// retrying with exponential backoff while the broker is unreachable.
func Connect(ctx context.Context, cfg ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = 10 * time.Second
	}
	if cfg.ConnectRetries <= 0 {
		cfg.ConnectRetries = 1
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: cfg, logger: log.Named("zeebe")}

	delay := cfg.ConnectRetryWait
retry:
	for attempt := 1; ; attempt++ {
		err = c.HealthCheck(ctx)
		if err == nil {
			return c, nil
		}
		if attempt >= cfg.ConnectRetries || !isRetryableZeebeError(err) {
			break
		}
		c.logger.Warn("zeebe broker not reachable, retrying", map[string]interface{}{
			"gatewayAddress": cfg.GatewayAddress,
			"attempt":        attempt,
			"nextRetryIn":    delay.String(),
			"error":          err.Error(),
		})
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			err = ctx.Err()
			break retry
		}
	}

	_ = zeebeClient.Close()
	return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.GatewayAddress, err)
}

// HealthCheck requests the broker topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return mapZeebeError(err, "topology")
	}
	return nil
}

// Open starts a job worker for taskType.
func (c *Client) Open(taskType string, maxJobsActive int, timeout time.Duration, handler func(worker.JobClient, entities.Job)) {
	jobWorker := c.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()
	c.workers = append(c.workers, jobWorker)

	c.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobsActive,
		"timeout_ms":    timeout.Milliseconds(),
	})
}

// Close stops every worker, waiting for in-flight jobs, then closes the
// connection.
func (c *Client) Close() error {
	for _, w := range c.workers {
		w.Close()
		w.AwaitClose()
	}
	c.workers = nil
	return c.client.Close()
}

func isRetryableZeebeError(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapZeebeError converts broker errors into StandardErrors. Transport
// problems become a retryable DEPENDENCY_FAILURE.
func mapZeebeError(err error, operation string) error {
	if isRetryableZeebeError(err) {
		return apperrors.NewDependencyFailureError("zeebe", operation).WithMetadata("error", err.Error())
	}
	return apperrors.NewInternalError(fmt.Errorf("zeebe %s: %w", operation, err))
}
