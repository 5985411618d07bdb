package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeParticipantExists   = "PARTICIPANT_EXISTS"
	CodeInvalidCheckpoint   = "INVALID_CHECKPOINT"
	CodeFreshCodeRequired   = "FRESH_CODE_REQUIRED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrParticipantExists):
		return &httpError{http.StatusConflict, APIError{CodeParticipantExists, "Participant already registered"}}
	case errors.Is(err, model.ErrInvalidCheckpoint):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCheckpoint, "Checkpoint must be START, MID or FINISH"}}

	// Expired and tampered tokens are deliberately indistinguishable to
	// the athlete; diagnostics rely on logs and metrics
	case errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenInvalidSignature):
		return &httpError{http.StatusUnauthorized, APIError{CodeFreshCodeRequired, "Please obtain a fresh code"}}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid bib number or passcode"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Staff access required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
