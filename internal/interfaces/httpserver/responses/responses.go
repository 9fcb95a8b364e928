package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pulse-server/internal/utils/platformerrors"
)

// HTTPErrorResponse is the wire shape of every error reply.
type HTTPErrorResponse struct {
	Error *HTTPErrorDetail `json:"error"`
}

type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError maps an error to its HTTP status and writes the response. Raw
// internal details never leave the process, only the platform error message.
func HandleError(c *gin.Context, logger zerolog.Logger, err error) {
	var platformErr *platformerrors.PlatformError
	if !errors.As(err, &platformErr) {
		platformErr = platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler,
			platformerrors.ErrorTypeInternal, "internal server error", err, "")
	}

	platformerrors.LogError(logger, platformErr)

	status := platformerrors.ErrorTypeToHTTPStatus(platformErr.Type)
	if status == http.StatusTooManyRequests {
		c.Header("Retry-After", "60")
	}
	c.JSON(status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   platformErr.Message,
			Type:      errorTypeToString(platformErr.Type),
			RequestID: platformErr.RequestID,
		},
	})
}

// HandleNewError creates and writes a new typed error response.
// Use this for route-level errors like validation or authorization failures.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	status := platformerrors.ErrorTypeToHTTPStatus(errorType)
	if status == http.StatusTooManyRequests {
		c.Header("Retry-After", "60")
	}
	c.JSON(status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message: message,
			Type:    errorTypeToString(errorType),
		},
	})
}

// errorTypeToString converts an ErrorType to a snake_case string for API responses.
func errorTypeToString(t platformerrors.ErrorType) string {
	switch t {
	case platformerrors.ErrorTypeNotFound:
		return "not_found_error"
	case platformerrors.ErrorTypeValidation:
		return "validation_error"
	case platformerrors.ErrorTypeConflict:
		return "conflict_error"
	case platformerrors.ErrorTypeUnauthorized:
		return "unauthorized_error"
	case platformerrors.ErrorTypeForbidden:
		return "forbidden_error"
	case platformerrors.ErrorTypeRateLimited:
		return "rate_limited_error"
	default:
		return "internal_error"
	}
}
