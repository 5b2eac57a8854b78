package repository

import "errors"

var (
	ErrNotFound     = errors.New("entity not found")
	ErrUpdateFailed = errors.New("update failed")
	ErrDeleteFailed = errors.New("delete failed")
	ErrQueryFailed  = errors.New("database query failed")
	// ErrStatusConflict means a conditional update found the document but its
	// status no longer matched the expected value (e.g. a lost claim race).
	ErrStatusConflict = errors.New("status conflict: entity was modified by another actor")
)
