// Package errors normalises infrastructure failures for workflow jobs and
// HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode is a stable, machine-readable failure code.
type ErrorCode string

const (
	ErrCodeFounderNotFound    ErrorCode = "FOUNDER_NOT_FOUND"
	ErrCodeFunderNotFound     ErrorCode = "FUNDER_NOT_FOUND"
	ErrCodeMatchNotFound      ErrorCode = "MATCH_NOT_FOUND"
	ErrCodeEmbeddingMissing   ErrorCode = "EMBEDDING_MISSING"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidMatchParams ErrorCode = "INVALID_MATCH_PARAMS"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateFounder         ErrorCode = "DUPLICATE_FOUNDER"

	ErrCodeEmbeddingGenerationFailed ErrorCode = "EMBEDDING_GENERATION_FAILED"
	ErrCodeEmbeddingRateLimited      ErrorCode = "EMBEDDING_RATE_LIMITED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWorkflowEngineFailed ErrorCode = "WORKFLOW_ENGINE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the structured error shared by workers and the HTTP API.
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns e.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is what gets thrown to the workflow engine.
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

// ToErrorVariables returns the variables attached to a failed job.
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

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewFounderNotFoundError(founderID string) *StandardError {
	return newError(ErrCodeFounderNotFound, "Founder not found", fmt.Sprintf("founderId: %s", founderID), false, nil)
}

func NewFunderNotFoundError(funderID string) *StandardError {
	return newError(ErrCodeFunderNotFound, "Funder not found", fmt.Sprintf("funderId: %s", funderID), false, nil)
}

func NewMatchNotFoundError(matchID string) *StandardError {
	return newError(ErrCodeMatchNotFound, "Match not found", fmt.Sprintf("matchId: %s", matchID), false, nil)
}

// NewEmbeddingMissingError is returned when hybrid matching is requested for
// a founder that has no vector yet.
func NewEmbeddingMissingError(founderID string) *StandardError {
	return newError(ErrCodeEmbeddingMissing, "Founder embedding not generated yet", fmt.Sprintf("founderId: %s", founderID), false, nil)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewInvalidMatchParamsError(details string) *StandardError {
	return newError(ErrCodeInvalidMatchParams, "Invalid match parameters", details, false, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true, nil)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true, err)
}

func NewDuplicateFounderError(email string) *StandardError {
	return newError(ErrCodeDuplicateFounder, "Founder with this email already exists", fmt.Sprintf("email: %s", email), false, nil)
}

func NewEmbeddingGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeEmbeddingGenerationFailed, "Embedding generation failed", err.Error(), true, err)
}

func NewEmbeddingRateLimitedError(err error) *StandardError {
	return newError(ErrCodeEmbeddingRateLimited, "Embedding service rate limited", err.Error(), true, err)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Vector search query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true, err)
}

// NewWorkflowEngineError wraps a failed Zeebe command. Only transport
// failures are retryable.
func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	return newError(ErrCodeWorkflowEngineFailed, "Workflow engine command failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), retryable, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion
// ==========================

// GetRetryCount returns the retry budget for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeEmbeddingGenerationFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeWorkflowEngineFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeEmbeddingRateLimited:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError for the workflow engine. The
// BPMN code is the internal code.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
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
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as
// INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps a code onto a response status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeFounderNotFound, ErrCodeFunderNotFound, ErrCodeMatchNotFound:
		return http.StatusNotFound
	case ErrCodeEmbeddingMissing, ErrCodeInvalidInput, ErrCodeInvalidMatchParams:
		return http.StatusBadRequest
	case ErrCodeDuplicateFounder:
		return http.StatusConflict
	case ErrCodeDatabaseConnectionFailed, ErrCodeWorkflowEngineFailed:
		return http.StatusServiceUnavailable
	case ErrCodeEmbeddingRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "EMBEDDING"):
		return "EMBEDDING"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
