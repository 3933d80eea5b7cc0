package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned by conditional inserts when the uniqueness
	// constraint already holds for the candidate value.
	ErrConflict = errors.New("conflict")

	// ErrStoreExhausted means the code-suffix probe hit its cap without
	// finding a free code.
	ErrStoreExhausted = errors.New("store exhausted")

	// ErrUnavailable wraps transient store I/O failures; callers may retry
	// the whole operation.
	ErrUnavailable = errors.New("store unavailable")
)
