package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
	"go.uber.org/zap"
)

// Recommendation cache keys and timings
const (
	RecommendLockKey         = "partner:precachejob:docache:lock"
	recommendKeyPrefix       = "partner:user:recommend:"
	DefaultRecommendTTL      = 60 * time.Second
	DefaultRefreshLease      = 30 * time.Second
	DefaultRecommendPageSize = 20
)

func recommendCacheKey(userID int64) string {
	return fmt.Sprintf("%s%d", recommendKeyPrefix, userID)
}

// RecommendCacheConfig configures the refresher
type RecommendCacheConfig struct {
	HotUserIDs []int64
	PageSize   int
	TTL        time.Duration
	Lease      time.Duration
}

// RecommendCacheJob pre-populates the first recommendation page of hot users.
// Only one instance across the fleet refreshes at a time.
type RecommendCacheJob struct {
	locker  domainRepo.Locker
	users   domainRepo.UserRepository
	cache   domainRepo.CacheRepository
	cfg     RecommendCacheConfig
	metrics Metrics
	logger  *zap.Logger
}

// NewRecommendCacheJob creates the refresher. Zero config values fall back to defaults.
func NewRecommendCacheJob(
	locker domainRepo.Locker,
	users domainRepo.UserRepository,
	cache domainRepo.CacheRepository,
	cfg RecommendCacheConfig,
	metrics Metrics,
	logger *zap.Logger,
) *RecommendCacheJob {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultRecommendPageSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultRecommendTTL
	}
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultRefreshLease
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RecommendCacheJob{
		locker:  locker,
		users:   users,
		cache:   cache,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Refresh makes one non-blocking attempt at the refresh lock. It returns false
// without touching the cache when another refresher holds it. Cache write
// failures are logged and do not fail the run.
func (j *RecommendCacheJob) Refresh(ctx context.Context) (bool, error) {
	lock, err := j.locker.TryAcquire(ctx, RecommendLockKey, 0, j.cfg.Lease)
	if err != nil {
		if errors.Is(err, domainRepo.ErrLockNotObtained) {
			j.metrics.IncCacheRefresh("skipped")
			j.logger.Debug("Recommendation refresh already running elsewhere")
			return false, nil
		}
		j.metrics.IncCacheRefresh("error")
		return false, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}

	stop := keepAlive(ctx, lock, j.cfg.Lease, j.logger)
	defer func() {
		stop()
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("Failed to release refresh lock", zap.Error(err))
		}
	}()

	users, total, err := j.users.Page(ctx, 0, j.cfg.PageSize)
	if err != nil {
		j.metrics.IncCacheRefresh("error")
		return true, fmt.Errorf("failed to load recommendation page: %w", err)
	}
	payload, err := json.Marshal(entity.UserPage{
		Records:    entity.NewSafeUsers(users),
		Pagination: entity.NewPaginationMeta(entity.DefaultPage, j.cfg.PageSize, total),
	})
	if err != nil {
		j.metrics.IncCacheRefresh("error")
		return true, fmt.Errorf("failed to encode recommendation page: %w", err)
	}

	written := 0
	for _, userID := range j.cfg.HotUserIDs {
		if err := j.cache.Set(ctx, recommendCacheKey(userID), string(payload), j.cfg.TTL); err != nil {
			j.logger.Error("Failed to write recommendation cache", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		written++
	}

	j.metrics.IncCacheRefresh("ok")
	j.logger.Info("Recommendation cache refreshed",
		zap.Int("hot_users", len(j.cfg.HotUserIDs)),
		zap.Int("written", written))
	return true, nil
}

// Run is the scheduler entry point
func (j *RecommendCacheJob) Run(ctx context.Context) {
	if _, err := j.Refresh(ctx); err != nil {
		apperrors.LogError(j.logger, err, "Recommendation refresh failed")
	}
}
