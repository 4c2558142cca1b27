// Package health exposes the liveness endpoint used by deploy probes.
package health

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/database"
	pkgredis "github.com/postcraft/core/internal/pkg/redis"
)

// Handler reports process and dependency health.
type Handler struct {
	db      *database.Database
	rdb     *pkgredis.Client
	started time.Time
}

// NewHandler creates the health handler.
func NewHandler(db *database.Database, rdb *pkgredis.Client) *Handler {
	return &Handler{db: db, rdb: rdb, started: time.Now()}
}

// RegisterRoutes mounts the health route. It is unauthenticated.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
}

func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()

	mongoStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		mongoStatus = err.Error()
	}
	redisStatus := "ok"
	if err := h.rdb.Ping(ctx); err != nil {
		redisStatus = err.Error()
	}

	status := "ok"
	code := 200
	if mongoStatus != "ok" || redisStatus != "ok" {
		status = "degraded"
		code = 503
	}

	c.JSON(code, gin.H{
		"status":         status,
		"mongo":          mongoStatus,
		"redis":          redisStatus,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
