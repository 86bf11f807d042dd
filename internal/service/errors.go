package service

import "errors"

// Typed errors returned to the routing layer for mapping onto client-facing
// failure responses. Downstream side-effect failures (blob, audit, notify)
// are never surfaced through these; they are logged at the boundary of the
// triggering operation.
var (
	ErrIDRequired        = errors.New("id is required")
	ErrClientRequired    = errors.New("client id is required")
	ErrReaderNil         = errors.New("reader is nil")
	ErrNotFound          = errors.New("resource not found")
	ErrValidationFailed  = errors.New("validation failed")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingReason     = errors.New("rejection requires a reason")
	ErrNotReady          = errors.New("application is not ready to submit")
	ErrAlreadyTerminal   = errors.New("application is in a terminal status")
)
