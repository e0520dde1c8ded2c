package config

import "time"

type ServiceConfig struct {
	Name        string
	Environment string
	Version     string
}

// LockConfig bounds how long a request waits for a team or user lock
type LockConfig struct {
	WaitTimeout time.Duration
	Lease       time.Duration
}

type CacheConfig struct {
	Recommend RecommendCacheConfig
}

// RecommendCacheConfig drives the scheduled recommendation refresh
type RecommendCacheConfig struct {
	Enabled    bool
	Schedule   string
	HotUserIDs []int64
	PageSize   int
	TTL        time.Duration
	Lease      time.Duration
}

type EventsConfig struct {
	Enabled bool
	Channel string
}

type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}
