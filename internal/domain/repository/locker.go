package repository

import (
	"context"
	"time"
)

// Locker hands out named distributed locks.
type Locker interface {
	// TryAcquire waits up to wait for the lock and holds it for lease unless refreshed.
	// A zero wait makes a single attempt. Returns ErrLockNotObtained when the wait elapses.
	TryAcquire(ctx context.Context, name string, wait, lease time.Duration) (Lock, error)
}

// Lock is a held distributed lock
type Lock interface {
	Key() string
	// Release frees the lock; releasing a lock that expired returns ErrLockNotHeld
	Release(ctx context.Context) error
	// Refresh extends the lease; fails with ErrLockNotHeld once the lease was lost
	Refresh(ctx context.Context, lease time.Duration) error
	IsHeld(ctx context.Context) bool
}
