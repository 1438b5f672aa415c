package errors

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrUnauthorized   = New(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	ErrInternal       = New(http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
)

// statusForType maps pipeline error types onto HTTP statuses for the
// trigger endpoint: upstream failures surface as gateway errors so the
// scheduler can distinguish them from bad requests.
func statusForType(t ErrorType) int {
	switch t {
	case ErrTypeSourceUnavailable:
		return http.StatusServiceUnavailable
	case ErrTypeDeliveryFailed:
		return http.StatusBadGateway
	case ErrTypeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts any error into an APIError, preserving AppError
// taxonomy codes and context where present.
func FromError(err error) *APIError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &APIError{
			StatusCode: statusForType(appErr.Type),
			ErrorCode:  string(appErr.Type),
			Message:    appErr.Message,
			Details:    appErr.Context,
		}
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}

// HandleError writes err to the response as JSON
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := FromError(err)
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apiErr)
}
