package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
)

// Backoff bounds between acquisition attempts
const (
	lockMinBackoff = 16 * time.Millisecond
	lockMaxBackoff = 512 * time.Millisecond
)

// redisLocker implements Locker on a single Redis master via bsm/redislock
type redisLocker struct {
	client *redislock.Client
	logger *zap.Logger
}

// NewRedisLocker creates a lock service backed by client
func NewRedisLocker(client redis.UniversalClient, logger *zap.Logger) domainRepo.Locker {
	return &redisLocker{
		client: redislock.New(client),
		logger: logger,
	}
}

func (l *redisLocker) TryAcquire(ctx context.Context, name string, wait, lease time.Duration) (domainRepo.Lock, error) {
	if lease <= 0 {
		return nil, fmt.Errorf("lock %s: lease must be positive", name)
	}

	opts := &redislock.Options{RetryStrategy: redislock.NoRetry()}
	obtainCtx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		obtainCtx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
		opts.RetryStrategy = redislock.ExponentialBackoff(lockMinBackoff, lockMaxBackoff)
	}

	lock, err := l.client.Obtain(obtainCtx, name, lease, opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, domainRepo.ErrLockNotObtained
		}
		l.logger.Error("Failed to obtain lock", zap.String("lock", name), zap.Error(err))
		return nil, fmt.Errorf("failed to obtain lock %s: %w", name, err)
	}

	return &redisLock{lock: lock, logger: l.logger}, nil
}

// redisLock wraps a held redislock.Lock
type redisLock struct {
	lock   *redislock.Lock
	logger *zap.Logger
}

func (l *redisLock) Key() string {
	return l.lock.Key()
}

func (l *redisLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil {
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return domainRepo.ErrLockNotHeld
		}
		return fmt.Errorf("failed to release lock %s: %w", l.lock.Key(), err)
	}
	return nil
}

func (l *redisLock) Refresh(ctx context.Context, lease time.Duration) error {
	if err := l.lock.Refresh(ctx, lease, nil); err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, redislock.ErrLockNotHeld) {
			return domainRepo.ErrLockNotHeld
		}
		return fmt.Errorf("failed to refresh lock %s: %w", l.lock.Key(), err)
	}
	return nil
}

func (l *redisLock) IsHeld(ctx context.Context) bool {
	ttl, err := l.lock.TTL(ctx)
	if err != nil {
		l.logger.Warn("Failed to read lock TTL", zap.String("lock", l.lock.Key()), zap.Error(err))
		return false
	}
	return ttl > 0
}
