package repository

import "errors"

var (
	// ErrAlreadyExists indicates a unique constraint violation
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNoRowsAffected indicates an update matched nothing
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrLockNotObtained indicates the lock is held elsewhere and the wait elapsed
	ErrLockNotObtained = errors.New("lock not obtained")

	// ErrLockNotHeld indicates the lease was lost before release or refresh
	ErrLockNotHeld = errors.New("lock not held")
)
