package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/lock"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	testTaskType = "start-underwriting"
	testAppID    = "4f8f1a52-9f7e-4d4c-9d59-1a2b3c4d5e6f"
)

func newTestRunner(t *testing.T) (*Runner, *miniredis.Miniredis) {
	t.Helper()

	validator, err := validation.NewValidator(map[string]map[string]interface{}{
		testTaskType: {
			"type":     "object",
			"required": []interface{}{"applicationId"},
			"properties": map[string]interface{}{
				"applicationId": map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.NewTestLogger(t)
	return &Runner{
		TaskType:  testTaskType,
		Timeout:   time.Second,
		Validator: validator,
		Locker:    lock.New(client, "test-lock:", time.Minute),
		Errors:    apperrors.NewErrorHandler(log, time.Second),
		Logger:    log,
	}, mr
}

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                42,
		Type:               testTaskType,
		ProcessInstanceKey: 7,
		Retries:            3,
		Variables:          variables,
	}}
}

type input struct {
	ApplicationID string `json:"applicationId"`
}

func TestRunner_Process_Success(t *testing.T) {
	runner, mr := newTestRunner(t)

	var lockedDuringRun bool
	out, err := runner.Process(context.Background(), newJob(`{"applicationId":"`+testAppID+`"}`),
		func(ctx context.Context, variables []byte) (interface{}, error) {
			lockedDuringRun = mr.Exists("test-lock:" + testAppID)
			in, err := Decode[input](variables)
			if err != nil {
				return nil, err
			}
			return map[string]string{"applicationId": in.ApplicationID}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"applicationId": testAppID}, out)
	assert.True(t, lockedDuringRun)
	assert.False(t, mr.Exists("test-lock:"+testAppID), "lock released after the job")
}

func TestRunner_Process_SchemaViolationSkipsOperation(t *testing.T) {
	runner, _ := newTestRunner(t)

	called := false
	_, err := runner.Process(context.Background(), newJob(`{"approved":true}`),
		func(context.Context, []byte) (interface{}, error) {
			called = true
			return nil, nil
		})

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrValidationFailed))
	assert.False(t, called)
}

func TestRunner_Process_MalformedVariables(t *testing.T) {
	runner, _ := newTestRunner(t)

	_, err := runner.Process(context.Background(), newJob(`{not json`),
		func(context.Context, []byte) (interface{}, error) { return nil, nil })

	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))
}

func TestRunner_Process_LockHeld(t *testing.T) {
	runner, mr := newTestRunner(t)
	require.NoError(t, mr.Set("test-lock:"+testAppID, "someone-else"))

	called := false
	_, err := runner.Process(context.Background(), newJob(`{"applicationId":"`+testAppID+`"}`),
		func(context.Context, []byte) (interface{}, error) {
			called = true
			return nil, nil
		})

	assert.Equal(t, apperrors.ErrCodeConcurrentOperation, apperrors.CodeOf(err))
	assert.False(t, called)
	got, _ := mr.Get("test-lock:" + testAppID)
	assert.Equal(t, "someone-else", got)
}

func TestRunner_Process_OperationErrorReleasesLock(t *testing.T) {
	runner, mr := newTestRunner(t)

	_, err := runner.Process(context.Background(), newJob(`{"applicationId":"`+testAppID+`"}`),
		func(context.Context, []byte) (interface{}, error) {
			return nil, apperrors.NewApplicationNotFoundError(testAppID)
		})

	assert.True(t, stderrors.Is(err, apperrors.ErrNotFound))
	assert.False(t, mr.Exists("test-lock:"+testAppID))
}

func TestRunner_Process_WithoutLocker(t *testing.T) {
	runner, _ := newTestRunner(t)
	runner.Locker = nil
	runner.Validator = nil

	out, err := runner.Process(context.Background(), newJob(`{"applicationId":"`+testAppID+`"}`),
		func(context.Context, []byte) (interface{}, error) { return "ok", nil })

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestDecode(t *testing.T) {
	in, err := Decode[input]([]byte(`{"applicationId":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", in.ApplicationID)

	_, err = Decode[input]([]byte(`{"applicationId":12}`))
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.CodeOf(err))
}

func TestMapZeebeError(t *testing.T) {
	unavailable := mapZeebeError(status.Error(codes.Unavailable, "broker down"), "topology")
	assert.Equal(t, apperrors.ErrCodeDependencyFailure, apperrors.CodeOf(unavailable))

	refused := mapZeebeError(stderrors.New("dial tcp: connection refused"), "topology")
	assert.Equal(t, apperrors.ErrCodeDependencyFailure, apperrors.CodeOf(refused))

	denied := mapZeebeError(status.Error(codes.PermissionDenied, "nope"), "topology")
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(denied))

	assert.False(t, isRetryableZeebeError(nil))
}
