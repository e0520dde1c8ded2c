package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/semo-partner/internal/adapter/handler/http"
	"github.com/wekeepgrowing/semo-partner/internal/config"
	"github.com/wekeepgrowing/semo-partner/internal/infrastructure/metrics"
	"github.com/wekeepgrowing/semo-partner/internal/middleware/auth"
	"github.com/wekeepgrowing/semo-partner/internal/usecase"
	"github.com/wekeepgrowing/semo-partner/pkg/logger"
	"go.uber.org/zap"
)

// Services are the use cases exposed over HTTP
type Services struct {
	Teams       *usecase.TeamService
	Memberships *usecase.MembershipService
	Views       *usecase.TeamViewService
	Users       *usecase.UserService
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	services Services
	metrics  *metrics.Collector
}

func NewServer(cfg *config.Config, log *zap.Logger, services Services, store sessions.Store, collector *metrics.Collector) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, log, handlers.RenderError)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(logger.NewEchoRequestLogger(log))
	if collector != nil {
		e.Use(collector.Middleware())
	}
	e.Use(session.Middleware(store))
	e.Use(auth.SessionMiddleware(auth.SessionConfig{
		Name:   cfg.Session.Name,
		Users:  services.Users,
		Logger: log,
	}))

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		services: services,
		metrics:  collector,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	userHandler := handlers.NewUserHandler(s.services.Users, s.config.Session.Name, s.logger)
	teamHandler := handlers.NewTeamHandler(s.services.Teams, s.services.Memberships, s.services.Views, s.logger)

	v1 := s.echo.Group("/api/v1")

	user := v1.Group("/user")
	user.POST("/register", userHandler.Register)
	user.POST("/login", userHandler.Login)
	user.POST("/logout", userHandler.Logout)
	user.GET("/current", userHandler.Current)
	user.GET("/recommend", userHandler.Recommend)
	user.GET("/match", userHandler.Match)
	user.GET("/search/tags", userHandler.SearchByTags)
	user.GET("/search", userHandler.Search)
	user.POST("/update", userHandler.Update)
	user.POST("/delete", userHandler.Delete)

	team := v1.Group("/team")
	team.POST("/add", teamHandler.Add)
	team.POST("/update", teamHandler.Update)
	team.POST("/delete", teamHandler.Delete)
	team.GET("/get", teamHandler.Get)
	team.GET("/list", teamHandler.List)
	team.GET("/list/page", teamHandler.ListPage)
	team.GET("/list/my/create", teamHandler.ListMyCreated)
	team.GET("/list/my/join", teamHandler.ListMyJoined)
	team.POST("/join", teamHandler.Join)
	team.POST("/quit", teamHandler.Quit)
}
