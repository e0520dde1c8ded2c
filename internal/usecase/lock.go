package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
	"go.uber.org/zap"
)

// Lock names
const (
	teamLockPrefix = "partner:lock:team:"
	userLockPrefix = "partner:lock:user:"
)

func teamLockKey(teamID int64) string {
	return fmt.Sprintf("%s%d", teamLockPrefix, teamID)
}

func userLockKey(userID int64) string {
	return fmt.Sprintf("%s%d", userLockPrefix, userID)
}

// lockGuard acquires named locks with a bounded wait and releases them on every exit path
type lockGuard struct {
	locker  domainRepo.Locker
	logger  *zap.Logger
	metrics Metrics
	wait    time.Duration
	lease   time.Duration
}

// withLocks acquires names in order, runs fn, then releases in reverse order.
// Callers must always pass team locks before user locks.
func (g *lockGuard) withLocks(ctx context.Context, scope string, names []string, fn func(ctx context.Context) error) error {
	held := make([]domainRepo.Lock, 0, len(names))
	defer func() {
		// release even when ctx was cancelled mid-operation
		releaseCtx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			g.release(releaseCtx, held[i])
		}
	}()

	for _, name := range names {
		lock, err := g.acquire(ctx, scope, name)
		if err != nil {
			return err
		}
		held = append(held, lock)
	}

	stops := make([]func(), 0, len(held))
	for _, lock := range held {
		stops = append(stops, keepAlive(ctx, lock, g.lease, g.logger))
	}
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	return fn(ctx)
}

func (g *lockGuard) acquire(ctx context.Context, scope, name string) (domainRepo.Lock, error) {
	start := time.Now()
	lock, err := g.locker.TryAcquire(ctx, name, g.wait, g.lease)
	g.metrics.ObserveLockWait(scope, time.Since(start), err == nil)
	if err == nil {
		return lock, nil
	}

	switch {
	case errors.Is(err, domainRepo.ErrLockNotObtained):
		g.logger.Warn("Lock wait timed out", zap.String("lock", name), zap.Duration("wait", g.wait))
		return nil, domainErrors.NewTimeoutError(name)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return nil, domainErrors.NewTimeoutError(name)
	default:
		g.logger.Error("Failed to acquire lock", zap.String("lock", name), zap.Error(err))
		return nil, domainErrors.NewSystemError("acquire lock", err)
	}
}

func (g *lockGuard) release(ctx context.Context, lock domainRepo.Lock) {
	if err := lock.Release(ctx); err != nil {
		if errors.Is(err, domainRepo.ErrLockNotHeld) {
			g.logger.Warn("Lock lease expired before release", zap.String("lock", lock.Key()))
			return
		}
		g.logger.Error("Failed to release lock", zap.String("lock", lock.Key()), zap.Error(err))
	}
}

// keepAlive refreshes the lease every lease/3 until stop is called or the lease is lost
func keepAlive(ctx context.Context, lock domainRepo.Lock, lease time.Duration, logger *zap.Logger) (stop func()) {
	interval := lease / 3
	if interval <= 0 {
		return func() {}
	}

	hbCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				if err := lock.Refresh(hbCtx, lease); err != nil {
					if hbCtx.Err() != nil {
						return
					}
					logger.Warn("Failed to refresh lock lease", zap.String("lock", lock.Key()), zap.Error(err))
					if errors.Is(err, domainRepo.ErrLockNotHeld) {
						return
					}
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// asSystemError passes domain errors through and wraps everything else
func asSystemError(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr interface{ Code() string }
	if errors.As(err, &appErr) {
		return err
	}
	return domainErrors.NewSystemError(message, err)
}

// domainErrorCode labels a failure for metrics
func domainErrorCode(err error) string {
	return strings.ToLower(apperrors.CodeOf(err))
}
