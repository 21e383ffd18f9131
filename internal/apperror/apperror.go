// Package apperror defines the closed error taxonomy for the blog API.
// Storage and library failures are converted into these types at the
// boundary where they occur, so the terminal HTTP error handler can match
// on a tag instead of sniffing error shapes.
package apperror

import (
	"errors"
	"net/http"
)

// Type tags an application error with its taxonomy entry.
type Type int

const (
	// Unclassified is any error that did not get converted at a boundary.
	Unclassified Type = iota
	// Validation is a multi-field input validation failure.
	Validation
	// DuplicateKey is a unique-index violation (username, email, slug).
	DuplicateKey
	// MalformedID is a request identifier that failed to parse.
	MalformedID
	// InvalidToken is a structurally broken or wrongly signed token.
	InvalidToken
	// ExpiredToken is a well-formed token past its expiry.
	ExpiredToken
	// NotAuthorized is a missing or unusable credential (401).
	NotAuthorized
	// Forbidden is an authenticated caller with the wrong role or ownership (403).
	Forbidden
	// NotFound is a missing resource (404).
	NotFound
	// Internal is a server-side failure (500).
	Internal
)

// AppError carries the taxonomy tag, a client-facing message, optional
// client-facing details and the underlying cause.
type AppError struct {
	Type    Type
	Message string
	// Details is either a string or a []string, surfaced to the client
	// for validation, duplicate, cast and token errors.
	Details interface{}
	Err     error
}

// Error satisfies the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the taxonomy entry to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case Validation, DuplicateKey, MalformedID:
		return http.StatusBadRequest
	case InvalidToken, ExpiredToken, NotAuthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the uniform error envelope returned to clients.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	Stack   string      `json:"stack,omitempty"` // development mode only
}

// ToResponse converts an AppError to the client envelope. The underlying
// cause is never included.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Details: e.Details}
}

// New creates an AppError with an arbitrary taxonomy tag.
func New(t Type, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewValidation creates a Validation error with per-field detail messages.
func NewValidation(details []string) *AppError {
	return &AppError{Type: Validation, Message: "Validation error", Details: details}
}

// NewDuplicateKey creates a DuplicateKey error naming the conflicting field.
func NewDuplicateKey(field string, err error) *AppError {
	return &AppError{Type: DuplicateKey, Message: "Duplicate field value", Details: field + " already exists", Err: err}
}

// NewMalformedID creates a MalformedID error.
func NewMalformedID(err error) *AppError {
	e := &AppError{Type: MalformedID, Message: "Invalid ID format", Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewInvalidToken creates an InvalidToken error.
func NewInvalidToken(err error) *AppError {
	e := &AppError{Type: InvalidToken, Message: "Invalid token", Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewExpiredToken creates an ExpiredToken error.
func NewExpiredToken(err error) *AppError {
	e := &AppError{Type: ExpiredToken, Message: "Token expired", Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewNotAuthorized creates a NotAuthorized error.
func NewNotAuthorized(message string, err error) *AppError {
	return &AppError{Type: NotAuthorized, Message: message, Err: err}
}

// NewForbidden creates a Forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{Type: Forbidden, Message: message}
}

// NewNotFound creates a NotFound error.
func NewNotFound(message string) *AppError {
	return &AppError{Type: NotFound, Message: message}
}

// NewInternal creates an Internal error.
func NewInternal(message string, err error) *AppError {
	return &AppError{Type: Internal, Message: message, Err: err}
}

// FromError extracts an *AppError from an error chain.
func FromError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries the given taxonomy tag.
func IsType(err error, t Type) bool {
	appErr, ok := FromError(err)
	return ok && appErr.Type == t
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return IsType(err, NotFound) }

// IsForbidden reports whether err is a Forbidden error.
func IsForbidden(err error) bool { return IsType(err, Forbidden) }

// IsDuplicateKey reports whether err is a DuplicateKey error.
func IsDuplicateKey(err error) bool { return IsType(err, DuplicateKey) }
