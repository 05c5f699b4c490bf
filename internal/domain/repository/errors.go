package repository

import "errors"

var (
	// ErrNotFound is returned by write operations whose target row is missing.
	// Lookups return (nil, nil) instead.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrLockHeld is returned by FinalizeGuard when the session already has a
	// finalize in flight.
	ErrLockHeld = errors.New("lock already held")
)
