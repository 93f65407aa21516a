package gateway

import (
	"context"
	"errors"
	"time"

	apphttp "loan-orchestrator/internal/common/http"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/metrics"
	"loan-orchestrator/internal/common/resilience"
)

// service binds one downstream service to its HTTP client and the shared
// resilience executor.
type service struct {
	name   string
	client *apphttp.Client
	exec   *resilience.Executor
	logger logger.Logger
}

func newService(name string, client *apphttp.Client, exec *resilience.Executor, log logger.Logger) service {
	return service{
		name:   name,
		client: client,
		exec:   exec,
		logger: log.WithFields(map[string]interface{}{"gateway": name}),
	}
}

// classify retries transport failures and retryable statuses. Not-found and
// unsuccessful envelopes are answers, not faults, so they neither retry nor
// count against the breaker.
func classify(err error) resilience.ErrorClassification {
	if errors.Is(err, apphttp.ErrNotFound) || errors.Is(err, apphttp.ErrUnsuccessful) {
		return resilience.ErrorClassification{}
	}
	var statusErr *apphttp.StatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{Retryable: statusErr.Retryable(), RecordFailure: statusErr.Retryable()}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

func (s service) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	start := time.Now()
	err := s.exec.Execute(ctx, s.name, operation, fn, classify)
	metrics.GatewayCallDuration.WithLabelValues(s.name, operation).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.GatewayCalls.WithLabelValues(s.name, operation, "ok").Inc()
	case errors.Is(err, apphttp.ErrNotFound):
		metrics.GatewayCalls.WithLabelValues(s.name, operation, "absent").Inc()
		s.logger.Debug("gateway returned no data", map[string]interface{}{"operation": operation})
	default:
		metrics.GatewayCalls.WithLabelValues(s.name, operation, "failed").Inc()
		s.logger.Warn("gateway call failed", map[string]interface{}{
			"operation":   operation,
			"error":       err.Error(),
			"circuitOpen": resilience.IsCircuitOpen(err),
		})
	}
	return err
}

func get[T any](ctx context.Context, s service, operation, path string) Result[T] {
	var out T
	err := s.run(ctx, operation, func(ctx context.Context) error {
		return s.client.GetData(ctx, path, &out)
	})
	if err != nil {
		return Absent[T]()
	}
	return Found(out)
}

func post[T any](ctx context.Context, s service, operation, path string, body interface{}) Result[T] {
	var out T
	err := s.run(ctx, operation, func(ctx context.Context) error {
		return s.client.PostData(ctx, path, body, &out)
	})
	if err != nil {
		return Absent[T]()
	}
	return Found(out)
}

// exists answers Found(false) when the service says the resource is missing
// and Absent when the service could not be asked.
func exists(ctx context.Context, s service, operation, path string) Result[bool] {
	err := s.run(ctx, operation, func(ctx context.Context) error {
		return s.client.Exists(ctx, path)
	})
	switch {
	case err == nil:
		return Found(true)
	case errors.Is(err, apphttp.ErrNotFound), errors.Is(err, apphttp.ErrUnsuccessful):
		return Found(false)
	default:
		return Absent[bool]()
	}
}
