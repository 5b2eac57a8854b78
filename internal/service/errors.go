package service

import "errors"

// Lifecycle errors returned to callers as values; handlers map them to
// user-facing rejections. Anything not matching one of these is an unexpected
// collaborator failure and should be treated as retryable.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("actor not authorized for this action")
	ErrAlreadyClaimed    = errors.New("listing was already claimed")
	ErrValidation        = errors.New("validation failed")
	// ErrPartialCreate means the primary row was written but a dependent row
	// was not; the caller must treat the entity as requiring reconciliation.
	ErrPartialCreate = errors.New("create partially committed")
)
