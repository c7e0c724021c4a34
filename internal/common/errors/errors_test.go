package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := NewUnexpectedShapeError("questions", "top-level value is a string")
	wrapped := fmt.Errorf("handler: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrUnexpectedShape))
	assert.False(t, stderrors.Is(wrapped, ErrMalformedJSON))
	assert.Equal(t, ErrCodeUnexpectedShape, CodeOf(wrapped))
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("invalid character 'x'")
	err := NewMalformedJSONError("report", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "MALFORMED_JSON")
	assert.Contains(t, err.Error(), "invalid character")
}

func TestAsStandard(t *testing.T) {
	assert.Nil(t, AsStandard(nil))
	assert.Equal(t, ErrCodeInternal, AsStandard(stderrors.New("boom")).Code)

	orig := NewSessionNotFoundError("abc")
	assert.Same(t, orig, AsStandard(fmt.Errorf("wrap: %w", orig)))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestPipelineErrorsAreNotRetryable(t *testing.T) {
	for _, err := range []*StandardError{
		NewEmptyResponseError("questions"),
		NewMalformedJSONError("questions", stderrors.New("x")),
		NewUnexpectedShapeError("questions", "x"),
		NewInvalidAnswerFormatError("x"),
	} {
		t.Run(string(err.Code), func(t *testing.T) {
			assert.False(t, err.Retryable)
			assert.False(t, IsRetryableErrorCode(err.Code))

			bpmn := ConvertToBPMNError(err)
			assert.Equal(t, string(err.Code), bpmn.Code)
			assert.Zero(t, bpmn.Retries)
		})
	}
}

func TestConvertToBPMNError_TransportErrors(t *testing.T) {
	bpmn := ConvertToBPMNError(NewLLMTimeoutError(nil))
	assert.Equal(t, "LLM_TIMEOUT", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 1, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "LLM_TIMEOUT", vars["errorCode"])
	assert.Equal(t, "LLM_TIMEOUT", vars["originalErrorCode"])
	require.Contains(t, vars, "timestamp")
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeEmptyResponse:       "INGESTION",
		ErrCodeMalformedJSON:       "INGESTION",
		ErrCodeUnexpectedShape:     "INGESTION",
		ErrCodeInvalidAnswerFormat: "VALIDATION",
		ErrCodeInvalidInput:        "VALIDATION",
		ErrCodeLLMTimeout:          "AI",
		ErrCodeSessionNotFound:     "SESSION",
		ErrCodeInternal:            "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), code)
	}
}

func TestWithMetadata(t *testing.T) {
	err := NewInvalidAnswerFormatError("index 0").WithMetadata("index", 0)
	assert.Equal(t, 0, err.Metadata["index"])
}
