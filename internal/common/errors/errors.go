package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeInvalidState        ErrorCode = "INVALID_APPLICATION_STATE"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"

	ErrCodeDependencyFailure  ErrorCode = "DEPENDENCY_FAILURE"
	ErrCodeDependencyDegraded ErrorCode = "DEPENDENCY_DEGRADED"

	ErrCodePersistenceFailed   ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeConcurrentOperation ErrorCode = "CONCURRENT_OPERATION"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so sentinels such as
// ErrNotFound work with errors.Is.
func (e *StandardError) Is(target error) bool {
	var other *StandardError
	if !stderrors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound            = &StandardError{Code: ErrCodeApplicationNotFound}
	ErrInvalidState        = &StandardError{Code: ErrCodeInvalidState}
	ErrValidationFailed    = &StandardError{Code: ErrCodeValidationFailed}
	ErrDependencyFailure   = &StandardError{Code: ErrCodeDependencyFailure}
	ErrDependencyDegraded  = &StandardError{Code: ErrCodeDependencyDegraded}
	ErrPersistenceFailed   = &StandardError{Code: ErrCodePersistenceFailed}
	ErrConcurrentOperation = &StandardError{Code: ErrCodeConcurrentOperation}
)

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Metadata:  map[string]interface{}{"applicationId": applicationID},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidStateError(applicationID, current, operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidState,
		Message:   fmt.Sprintf("Cannot %s application in status %s", operation, current),
		Details:   fmt.Sprintf("applicationId: %s, status: %s", applicationID, current),
		Retryable: false,
		Metadata: map[string]interface{}{
			"applicationId": applicationID,
			"status":        current,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDependencyFailureError(service, operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDependencyFailure,
		Message:   fmt.Sprintf("Required call to %s failed", service),
		Details:   fmt.Sprintf("service: %s, operation: %s", service, operation),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service, "operation": operation},
		Timestamp: time.Now().UTC(),
	}
}

func NewDependencyDegradedError(service, operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDependencyDegraded,
		Message:   fmt.Sprintf("Best-effort call to %s failed", service),
		Details:   fmt.Sprintf("service: %s, operation: %s", service, operation),
		Retryable: false,
		Metadata:  map[string]interface{}{"service": service, "operation": operation},
		Timestamp: time.Now().UTC(),
	}
}

func NewPersistenceFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Persisting application failed",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewConcurrentOperationError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConcurrentOperation,
		Message:   "Another operation is running for this application",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// AsStandardError returns err as a *StandardError, wrapping unknown errors as
// INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeApplicationNotFound: "APPLICATION_NOT_FOUND",
	ErrCodeInvalidState:        "INVALID_APPLICATION_STATE",
	ErrCodeValidationFailed:    "VALIDATION_FAILED",
	ErrCodeDependencyFailure:   "DEPENDENCY_FAILURE",
	ErrCodeDependencyDegraded:  "DEPENDENCY_DEGRADED",
	ErrCodePersistenceFailed:   "PERSISTENCE_FAILED",
	ErrCodeConcurrentOperation: "CONCURRENT_OPERATION",
	ErrCodeInternal:            "INTERNAL_ERROR",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDependencyFailure,
		ErrCodePersistenceFailed,
		ErrCodeInternal:
		return 3

	case ErrCodeConcurrentOperation:
		return 5

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DEPENDENCY"):
		return "DEPENDENCY"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "DATABASE"
	case strings.Contains(codeStr, "STATE") || strings.Contains(codeStr, "NOT_FOUND"):
		return "BUSINESS"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CONCURRENT"):
		return "CONCURRENCY"
	default:
		return "OTHER"
	}
}
