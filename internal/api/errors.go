package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "readiness-workers/internal/common/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// StatusFor maps an error code to the HTTP status the API answers with.
func StatusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidAnswerFormat:
		return http.StatusBadRequest
	case apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeEmptyResponse, apperrors.ErrCodeMalformedJSON,
		apperrors.ErrCodeUnexpectedShape, apperrors.ErrCodeLLMRequestFailed:
		return http.StatusBadGateway
	case apperrors.ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := apperrors.AsStandard(err)
	status := StatusFor(stdErr.Code)

	fields := map[string]interface{}{
		"path":      c.FullPath(),
		"errorCode": string(stdErr.Code),
		"status":    status,
		"details":   stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Warn("request rejected", fields)
	}

	c.AbortWithStatusJSON(status, errorBody{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}
