package types

import (
	"errors"
	"fmt"
)

// Table service outcomes. Implementations of TableService wrap these so the
// driver can recognize idempotent no-ops.
var (
	ErrAlreadyExists     = errors.New("table already exists")
	ErrNotFound          = errors.New("table not found")
	ErrNamespaceNotFound = errors.New("namespace not found")
)

// Local catalog lifecycle errors.
var (
	ErrCatalogDetached = errors.New("catalog is detached")
	ErrAlreadyAttached = errors.New("catalog is already attached")
)

// Error kinds reported in run summaries.
const (
	KindParse        = "parse"
	KindValidation   = "validation"
	KindAPITransient = "api-transient"
	KindAPIPermanent = "api-permanent"
	KindInternal     = "internal"
)

// ParseError reports a document that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a missing or invalid field in a decoded document.
type ValidationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s: %s", e.Path, e.Field, e.Reason)
}

// APIError reports a failed call to the table service. Transient errors
// (throttling, server errors, network failures) may be retried.
type APIError struct {
	Op        string
	Table     Identity
	Code      string
	Transient bool
	Err       error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Table)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err carries a retryable APIError.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Transient
}

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var (
		parseErr *ParseError
		validErr *ValidationError
		apiErr   *APIError
	)
	switch {
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &validErr):
		return KindValidation
	case errors.As(err, &apiErr):
		if apiErr.Transient {
			return KindAPITransient
		}
		return KindAPIPermanent
	default:
		return KindInternal
	}
}
