package constants

import "errors"

// Errors
var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrNotSupported       = errors.New("operation not supported")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConstraint         = errors.New("constraint violation")
	ErrUpdateConflict     = errors.New("update conflict")
	ErrRuntime            = errors.New("runtime error")
	ErrConnection         = errors.New("connection error")
	ErrRepositoryUnknown  = errors.New("repository unknown")
	ErrNilStream          = errors.New("stream is nil")
	ErrUnexpectedDocument = errors.New("unexpected document")
	ErrNoBaseURL          = errors.New("atompub url not set")
)
