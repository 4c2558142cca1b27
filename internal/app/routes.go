package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/middleware"
	"github.com/postcraft/core/internal/modules/admin"
	"github.com/postcraft/core/internal/modules/auth"
	"github.com/postcraft/core/internal/modules/library"
	"github.com/postcraft/core/internal/modules/posts"
	"github.com/postcraft/core/internal/modules/processing/ai"
	"github.com/postcraft/core/internal/modules/social"
	"github.com/postcraft/core/internal/modules/system/health"
	"github.com/postcraft/core/internal/modules/system/jobs"
	"github.com/postcraft/core/internal/pkg/jwt"
	"github.com/postcraft/core/internal/pkg/response"
	"github.com/postcraft/core/internal/pkg/taskqueue"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() error {
	r := a.router
	cfg := a.cfg
	logger := a.logger

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	signer := jwt.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	authMW := middleware.Auth(signer)

	// OptionalAuth must precede the rate limiter and the response cache:
	// both exempt authenticated callers, and group-level Auth runs too late
	// for them to see the token.
	r.Use(middleware.OptionalAuth(signer))
	r.Use(middleware.RateLimit(a.rdb.Raw()))
	r.Use(middleware.HTTPCache(a.rdb.Raw(), middleware.HTTPCacheOptions{
		TTL:       time.Minute,
		Disable:   cfg.IsDev(),
		SkipPaths: []string{apiPrefix + "/health", apiPrefix + "/social/facebook/callback"},
	}))

	api := r.Group(apiPrefix)

	// auth
	authSvc := auth.NewService(a.db, signer)
	auth.NewHandler(authSvc, logger).RegisterRoutes(api, authMW)

	// content library
	store, err := library.NewBlobStore(cfg.Storage, a.db)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	verifier := library.NewVerifier(a.db, a.rdb, store, cfg.Retention.VerifyStaleThreshold, logger)
	librarySvc := library.NewService(a.db, store, verifier, cfg, logger)
	library.NewHandler(librarySvc, logger).RegisterRoutes(api, authMW)

	// posts
	var aiClient *ai.Client
	if cfg.AI.Enable {
		aiClient = ai.NewClient(cfg.AI.Provider)
	}
	taskSvc := taskqueue.NewService(a.rdb)
	postsSvc := posts.NewService(a.db, taskSvc, aiClient, librarySvc, cfg.PublicBaseURL, logger)
	posts.NewHandler(postsSvc, logger).RegisterRoutes(api, authMW)

	// social connections & publishing
	graph := social.NewGraphClient(cfg.Facebook)
	socialSvc := social.NewService(a.db, a.rdb, graph, logger)
	social.NewHandler(socialSvc, logger).RegisterRoutes(api, authMW)

	// admin
	adminSvc := admin.NewService(a.db, cfg.Stripe.SecretKey, logger)
	admin.NewHandler(adminSvc, logger).RegisterRoutes(api, authMW)

	// system
	health.NewHandler(a.db, a.rdb).RegisterRoutes(api)
	jobs.NewHandler(a.sched, logger).RegisterRoutes(api, authMW)

	a.registerCronJobs(postsSvc, verifier)
	return nil
}
