// Package errors provides the classified error taxonomy shared by the
// ingestion pipeline, the Zeebe workers and the HTTP adapter.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Response ingestion errors. None of these are retried automatically; the
// caller surfaces them and lets the user re-trigger the step.
const (
	ErrCodeEmptyResponse       ErrorCode = "EMPTY_RESPONSE"
	ErrCodeMalformedJSON       ErrorCode = "MALFORMED_JSON"
	ErrCodeUnexpectedShape     ErrorCode = "UNEXPECTED_SHAPE"
	ErrCodeInvalidAnswerFormat ErrorCode = "INVALID_ANSWER_FORMAT"
)

// Transport and caller errors.
const (
	ErrCodeLLMTimeout       ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRequestFailed ErrorCode = "LLM_REQUEST_FAILED"

	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFail ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
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
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so the code
// sentinels below work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Code sentinels for errors.Is.
var (
	ErrEmptyResponse       = &StandardError{Code: ErrCodeEmptyResponse}
	ErrMalformedJSON       = &StandardError{Code: ErrCodeMalformedJSON}
	ErrUnexpectedShape     = &StandardError{Code: ErrCodeUnexpectedShape}
	ErrInvalidAnswerFormat = &StandardError{Code: ErrCodeInvalidAnswerFormat}
	ErrLLMTimeout          = &StandardError{Code: ErrCodeLLMTimeout}
	ErrLLMRequestFailed    = &StandardError{Code: ErrCodeLLMRequestFailed}
	ErrInvalidInput        = &StandardError{Code: ErrCodeInvalidInput}
	ErrSessionNotFound     = &StandardError{Code: ErrCodeSessionNotFound}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// NewEmptyResponseError reports a generation call that produced no text.
func NewEmptyResponseError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyResponse,
		Message:   "Text generation service returned an empty response",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedJSONError reports text that is not valid JSON after fence cleanup.
func NewMalformedJSONError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedJSON,
		Message:   "Response is not valid JSON",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUnexpectedShapeError reports valid JSON with the wrong top-level structure.
func NewUnexpectedShapeError(operation, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnexpectedShape,
		Message:   "Response JSON has an unexpected shape",
		Details:   fmt.Sprintf("operation: %s, %s", operation, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidAnswerFormatError reports an answer that could not be read as an integer.
func NewInvalidAnswerFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidAnswerFormat,
		Message:   "Answer is not in the expected numeric format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(err error) *StandardError {
	details := "call exceeded its deadline"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Text generation service timeout",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMRequestFailedError creates a retryable transport error.
func NewLLMRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "Text generation request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Assessment session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreError wraps a backend failure of the session store.
func NewSessionStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFail,
		Message:   "Session store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by
// boundary events in the assessment process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeEmptyResponse:       "EMPTY_RESPONSE",
	ErrCodeMalformedJSON:       "MALFORMED_JSON",
	ErrCodeUnexpectedShape:     "UNEXPECTED_SHAPE",
	ErrCodeInvalidAnswerFormat: "INVALID_ANSWER_FORMAT",
	ErrCodeLLMTimeout:          "LLM_TIMEOUT",
	ErrCodeLLMRequestFailed:    "LLM_REQUEST_FAILED",
	ErrCodeInvalidInput:        "INVALID_INPUT",
	ErrCodeSessionNotFound:     "SESSION_NOT_FOUND",
	ErrCodeSessionStoreFail:    "SESSION_STORE_FAILED",
}

// GetRetryCount returns the orchestration-level retry budget for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLLMRequestFailed, ErrCodeSessionStoreFail:
		return 2
	case ErrCodeLLMTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard returns err as a *StandardError, wrapping anything
// unclassified as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the classification of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandard(err).Code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeEmptyResponse || code == ErrCodeMalformedJSON || code == ErrCodeUnexpectedShape:
		return "INGESTION"
	case strings.HasPrefix(codeStr, "LLM"):
		return "AI"
	case strings.HasPrefix(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
