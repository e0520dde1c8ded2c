package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
)

// redisCacheRepository Redis 캐시 저장소 구현체
type redisCacheRepository struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisCacheRepository Redis 캐시 저장소 생성
func NewRedisCacheRepository(client redis.UniversalClient, logger *zap.Logger) domainRepo.CacheRepository {
	return &redisCacheRepository{
		client: client,
		logger: logger,
	}
}

// Set 키-값 저장
func (r *redisCacheRepository) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		r.logger.Error("Redis Set 실패", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Get 키로 값 조회. 키가 없으면 redis.Nil을 그대로 반환합니다.
func (r *redisCacheRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", err
		}
		r.logger.Error("Redis Get 실패", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return value, nil
}

// Delete 키 삭제
func (r *redisCacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Redis Delete 실패", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}

// IsNotFound 키가 존재하지 않는 에러인지 확인
func (r *redisCacheRepository) IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
