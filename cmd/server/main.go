package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wekeepgrowing/semo-partner/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-partner/internal/config"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/database"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/grpc"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/http"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/metrics"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/scheduler"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/store"
	"github.com/wekeepgrowing/semo-partner/internal/usecase"
	"github.com/wekeepgrowing/semo-partner/pkg/logger"
	"github.com/wekeepgrowing/semo-partner/pkg/messaging"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Service.Environment == "development",
		Service:     cfg.Service.Name,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("Starting partner service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("version", cfg.Service.Version))

	// 3. Database
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db, zapLogger) }()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}
	repos := database.NewRepositories(db, zapLogger)

	// 4. Redis: locks, recommendation cache, team events
	redisClient, err := store.NewRedisClient(&cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	locker := repository.NewRedisLocker(redisClient, zapLogger)
	cache := repository.NewRedisCacheRepository(redisClient, zapLogger)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	opts := []usecase.Option{
		usecase.WithMetrics(collector),
		usecase.WithLockTimings(cfg.Lock.WaitTimeout, cfg.Lock.Lease),
	}
	if cfg.Events.Enabled {
		opts = append(opts, usecase.WithPublisher(messaging.NewRedisBus(redisClient), cfg.Events.Channel))
	}

	// 5. Use cases
	memberships := usecase.NewMembershipService(repos.Team, repos.UserTeam, repos.Transactor, locker, zapLogger, opts...)
	services := http.Services{
		Teams:       usecase.NewTeamService(repos.Team, repos.UserTeam, repos.Transactor, locker, zapLogger, opts...),
		Memberships: memberships,
		Views:       usecase.NewTeamViewService(repos.Team, repos.UserTeam, repos.User, zapLogger, opts...),
		Users: usecase.NewUserService(repos.User, cache, cfg.Session.BcryptCost, zapLogger,
			usecase.WithRecommendCache(cfg.Cache.Recommend.TTL, cfg.Cache.Recommend.PageSize),
			usecase.WithTeamCleanup(memberships)),
	}

	// 6. Sessions
	sessionPool := store.NewSessionPool(&cfg.Redis)
	sessionStore, err := store.NewSessionStore(sessionPool, &cfg.Session, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create session store", zap.Error(err))
	}
	defer sessionStore.Close()

	// 7. Recommendation cache refresh
	jobs := scheduler.New(zapLogger)
	if cfg.Cache.Recommend.Enabled {
		job := usecase.NewRecommendCacheJob(locker, repos.User, cache, usecase.RecommendCacheConfig{
			HotUserIDs: cfg.Cache.Recommend.HotUserIDs,
			PageSize:   cfg.Cache.Recommend.PageSize,
			TTL:        cfg.Cache.Recommend.TTL,
			Lease:      cfg.Cache.Recommend.Lease,
		}, collector, zapLogger)
		if err := jobs.Register("recommend-cache", cfg.Cache.Recommend.Schedule, job.Run); err != nil {
			zapLogger.Fatal("Failed to schedule recommendation cache refresh", zap.Error(err))
		}
	}
	jobs.Start()

	// 8. Servers
	httpServer := http.NewServer(cfg, zapLogger, services, sessionStore, collector)
	grpcServer := grpc.NewServer(&cfg.Server.GRPC, cfg.Service.Name, zapLogger)

	go func() {
		if err := httpServer.Start(); err != nil {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	go func() {
		if err := grpcServer.Start(); err != nil {
			zapLogger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := grpcServer.Shutdown(ctx); err != nil {
		zapLogger.Error("gRPC server shutdown error", zap.Error(err))
	}
	if err := jobs.Stop(ctx); err != nil {
		zapLogger.Error("Scheduler shutdown error", zap.Error(err))
	}

	zapLogger.Info("Partner service stopped")
}
