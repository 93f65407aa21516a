// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/lock"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/metrics"
	"loan-orchestrator/internal/common/observability"
	"loan-orchestrator/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

// Operation runs one job. variables is the raw job payload, already checked
// against the task's input schema.
type Operation func(ctx context.Context, variables []byte) (interface{}, error)

// Runner is the shared job pipeline: validate, lock, execute, report.
type Runner struct {
	TaskType  string
	Timeout   time.Duration
	Validator *validation.Validator
	Locker    *lock.Locker
	Errors    *apperrors.ErrorHandler
	Obs       *observability.Observability
	Logger    logger.Logger
}

// Handle is the zeebe handler body. The operation result becomes the job's
// output variables; errors go through the ErrorHandler.
func (r *Runner) Handle(client worker.JobClient, job entities.Job, op Operation) {
	log := r.Logger.WithFields(map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	log.Info("processing job", nil)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	output, err := r.Process(ctx, job, op)
	if err != nil {
		r.Errors.HandleJobError(context.Background(), client, job, err)
		return
	}
	r.completeJob(client, job, output, log)
}

// Process runs op for job without talking to the broker.
func (r *Runner) Process(ctx context.Context, job entities.Job, op Operation) (output interface{}, err error) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Inc()
	ctx, span := r.Obs.StartSpan(ctx, "job."+r.TaskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("process.instance.key", job.ProcessInstanceKey))
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Dec()
		r.record(ctx, start, err)
		span.End()
	}()

	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("parse variables: %v", err))
	}
	if err := r.Validator.Validate(r.TaskType, variables); err != nil {
		return nil, err
	}

	if id, ok := variables["applicationId"].(string); ok && id != "" {
		lease, err := r.Locker.Acquire(ctx, id)
		if err != nil {
			return nil, err
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := lease.Release(releaseCtx); err != nil {
				r.Logger.Warn("failed to release application lock", map[string]interface{}{
					"applicationId": id,
					"error":         err.Error(),
				})
			}
		}()
	}

	return op(ctx, []byte(job.Variables))
}

func (r *Runner) record(ctx context.Context, start time.Time, err error) {
	elapsed := time.Since(start)
	status := "completed"
	if err != nil {
		status = "failed"
		metrics.WorkerJobsFailed.WithLabelValues(r.TaskType, string(apperrors.AsStandardError(err).Code)).Inc()
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(r.TaskType).Inc()
	}
	metrics.WorkerJobDuration.WithLabelValues(r.TaskType).Observe(elapsed.Seconds())
	r.Obs.RecordJobProcessed(ctx, r.TaskType, status)
	r.Obs.RecordJobDuration(ctx, r.TaskType, elapsed, status)
}

func (r *Runner) completeJob(client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	log.Info("job completed successfully", nil)
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return 30 * time.Second
	}
	return r.Timeout
}

// Decode unmarshals job variables into T, mapping malformed payloads to
// VALIDATION_FAILED.
func Decode[T any](variables []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(variables, &v); err != nil {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return &v, nil
}
