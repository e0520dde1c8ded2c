package store

import (
	"fmt"
	"time"

	"github.com/boj/redistore"
	redigo "github.com/gomodule/redigo/redis"
	"github.com/gorilla/sessions"
	"github.com/wekeepgrowing/semo-partner/internal/config"
	"go.uber.org/zap"
)

// NewSessionPool creates the redigo pool backing the session store
func NewSessionPool(cfg *config.RedisConfig) *redigo.Pool {
	return &redigo.Pool{
		MaxIdle:     10,
		MaxActive:   0, // unlimited
		IdleTimeout: 240 * time.Second,
		Dial: func() (redigo.Conn, error) {
			var options []redigo.DialOption
			if cfg.Password != "" {
				options = append(options, redigo.DialPassword(cfg.Password))
			}
			if cfg.DB != 0 {
				options = append(options, redigo.DialDatabase(cfg.DB))
			}
			return redigo.Dial("tcp", cfg.Addr(), options...)
		},
	}
}

// NewSessionStore creates the Redis-backed cookie session store
func NewSessionStore(pool *redigo.Pool, cfg *config.SessionConfig, logger *zap.Logger) (*redistore.RediStore, error) {
	store, err := redistore.NewRediStoreWithPool(pool, []byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	store.SetKeyPrefix(cfg.KeyPrefix)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
	}

	logger.Info("Session store initialized",
		zap.String("key_prefix", cfg.KeyPrefix),
		zap.Int("max_age", cfg.MaxAge),
		zap.Bool("secure", cfg.Secure),
	)
	return store, nil
}
