// Package jobs exposes the background scheduler to admins: listing job
// states and triggering a run out of schedule.
package jobs

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/middleware"
	"github.com/postcraft/core/internal/pkg/cron"
	"github.com/postcraft/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	sched  *cron.Scheduler
	logger *zap.Logger
}

func NewHandler(sched *cron.Scheduler, logger *zap.Logger) *Handler {
	return &Handler{sched: sched, logger: logger.Named("jobs")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/system/jobs", authMW, middleware.AdminOnly())

	g.GET("", h.list)
	g.POST("/:name/run", h.run)
}

func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.sched.List())
}

func (h *Handler) run(c *gin.Context) {
	name := c.Param("name")
	// The job outlives the request; do not tie it to the request context.
	if err := h.sched.Run(context.Background(), name); err != nil {
		response.NotFound(c, err.Error())
		return
	}
	h.logger.Info("job triggered", zap.String("job", name))
	response.OK(c, gin.H{"triggered": name})
}
