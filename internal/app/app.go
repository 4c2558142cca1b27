package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/config"
	"github.com/postcraft/core/internal/database"
	"github.com/postcraft/core/internal/middleware"
	pkgcron "github.com/postcraft/core/internal/pkg/cron"
	pkgredis "github.com/postcraft/core/internal/pkg/redis"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *database.Database
	rdb    *pkgredis.Client
	logger *zap.Logger
	sched  *pkgcron.Scheduler
	cancel context.CancelFunc
}

// New initializes the application: config → Mongo → Redis → routes → cron.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("mongo: %w", err)
	}

	rdb, err := pkgredis.Connect(cfg.Redis.URL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	app := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		rdb:    rdb,
		logger: logger,
		sched:  pkgcron.New(logger),
		cancel: cancel,
	}

	if err := app.registerRoutes(); err != nil {
		cancel()
		return nil, err
	}
	go app.sched.Start(ctx)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines and closes connections.
func (a *App) Shutdown(ctx context.Context) {
	a.cancel()
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
	if err := a.db.Close(ctx); err != nil {
		a.logger.Warn("mongo close failed", zap.Error(err))
	}
}
