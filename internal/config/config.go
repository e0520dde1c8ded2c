package config

import (
	"fmt"

	pkgconfig "github.com/wekeepgrowing/semo-partner/pkg/config"
)

const serviceName = "partner"

type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Session  SessionConfig
	Lock     LockConfig
	Cache    CacheConfig
	Events   EventsConfig
	Log      LogConfig
}

// LoadConfig reads configs/<APP_ENV>/partner.yaml (or $CONFIG_PATH) with PARTNER_* env overrides
func LoadConfig() (*Config, error) {
	src, err := pkgconfig.Load(serviceName, pkgconfig.WithDefaults(defaults))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := FromSource(src)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromSource maps raw keys onto the typed config
func FromSource(src pkgconfig.Config) *Config {
	hot := src.GetIntSlice("cache.recommend.hot_user_ids")
	hotIDs := make([]int64, 0, len(hot))
	for _, id := range hot {
		hotIDs = append(hotIDs, int64(id))
	}

	return &Config{
		Service: ServiceConfig{
			Name:        src.GetString("service.name"),
			Environment: src.GetString("service.environment"),
			Version:     src.GetString("service.version"),
		},
		Database: DatabaseConfig{
			Host:            src.GetString("database.host"),
			Port:            src.GetInt("database.port"),
			Name:            src.GetString("database.name"),
			User:            src.GetString("database.user"),
			Password:        src.GetString("database.password"),
			SSLMode:         src.GetString("database.sslmode"),
			MaxOpenConns:    src.GetInt("database.max_open_conns"),
			MaxIdleConns:    src.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: src.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: src.GetDuration("database.conn_max_idle_time"),
			LogLevel:        src.GetString("database.log_level"),
			SlowThreshold:   src.GetDuration("database.slow_threshold"),
		},
		Redis: RedisConfig{
			Host:     src.GetString("redis.host"),
			Port:     src.GetInt("redis.port"),
			Password: src.GetString("redis.password"),
			DB:       src.GetInt("redis.db"),
			PoolSize: src.GetInt("redis.pool_size"),
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{
				Host: src.GetString("server.http.host"),
				Port: src.GetInt("server.http.port"),
			},
			GRPC: GRPCConfig{
				Host: src.GetString("server.grpc.host"),
				Port: src.GetInt("server.grpc.port"),
			},
		},
		Session: SessionConfig{
			Name:       src.GetString("session.name"),
			Secret:     src.GetString("session.secret"),
			KeyPrefix:  src.GetString("session.key_prefix"),
			MaxAge:     src.GetInt("session.max_age"),
			Secure:     src.GetBool("session.secure"),
			BcryptCost: src.GetInt("session.bcrypt_cost"),
		},
		Lock: LockConfig{
			WaitTimeout: src.GetDuration("lock.wait_timeout"),
			Lease:       src.GetDuration("lock.lease"),
		},
		Cache: CacheConfig{
			Recommend: RecommendCacheConfig{
				Enabled:    src.GetBool("cache.recommend.enabled"),
				Schedule:   src.GetString("cache.recommend.schedule"),
				HotUserIDs: hotIDs,
				PageSize:   src.GetInt("cache.recommend.page_size"),
				TTL:        src.GetDuration("cache.recommend.ttl"),
				Lease:      src.GetDuration("cache.recommend.lease"),
			},
		},
		Events: EventsConfig{
			Enabled: src.GetBool("events.enabled"),
			Channel: src.GetString("events.channel"),
		},
		Log: LogConfig{
			Level:    src.GetString("log.level"),
			Format:   src.GetString("log.format"),
			Output:   src.GetString("log.output"),
			FilePath: src.GetString("log.file_path"),
		},
	}
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.Server.HTTP.Port <= 0 {
		return fmt.Errorf("server.http.port must be positive")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required")
	}
	if c.Lock.Lease <= 0 || c.Lock.WaitTimeout < 0 {
		return fmt.Errorf("lock.lease must be positive and lock.wait_timeout non-negative")
	}
	if c.Cache.Recommend.TTL <= 0 || c.Cache.Recommend.Lease <= 0 {
		return fmt.Errorf("cache.recommend.ttl and cache.recommend.lease must be positive")
	}
	return nil
}
