package admin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/middleware"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/pagination"
	"github.com/postcraft/core/internal/pkg/response"
	"go.uber.org/zap"
)

// Handler exposes the admin endpoints. Every route requires an admin
// token.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates the admin handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.Named("admin")}
}

// RegisterRoutes mounts the admin routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := rg.Group("/admin", authMW, middleware.AdminOnly())
	{
		admin.GET("/stats", h.stats)
		admin.GET("/revenue", h.revenue)
		admin.POST("/promo-codes", h.createPromoCode)
		admin.GET("/promo-codes", h.listPromoCodes)
		admin.DELETE("/promo-codes/:id", h.deletePromoCode)
		admin.GET("/plans", h.listPlans)
		admin.POST("/plans", h.createPlan)
		admin.GET("/payments", h.payments)
		admin.GET("/referrals", h.referrals)
	}
}

// stats returns platform-wide counts.
func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// revenue returns payment sums bucketed by day.
func (h *Handler) revenue(c *gin.Context) {
	from, ok := parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return
	}

	buckets, err := h.svc.Revenue(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("revenue report failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, buckets)
}

// createPromoCode creates a promo code; a duplicate code is a 400.
func (h *Handler) createPromoCode(c *gin.Context) {
	var dto PromoCodeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "code and discount_pct are required")
		return
	}

	code, err := h.svc.CreatePromoCode(c.Request.Context(), dto)
	if err != nil {
		if !apierror.IsKind(err, apierror.KindValidation) {
			h.logger.Error("promo code creation failed", zap.Error(err))
		}
		response.Error(c, err)
		return
	}
	response.Created(c, code)
}

// listPromoCodes lists every promo code.
func (h *Handler) listPromoCodes(c *gin.Context) {
	codes, err := h.svc.ListPromoCodes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, codes)
}

// deletePromoCode removes one promo code.
func (h *Handler) deletePromoCode(c *gin.Context) {
	if err := h.svc.DeletePromoCode(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// createPlan stores a plan, mirroring it to Stripe when configured.
func (h *Handler) createPlan(c *gin.Context) {
	var dto PlanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "name and price_cents are required")
		return
	}

	plan, err := h.svc.CreatePlan(c.Request.Context(), dto)
	if err != nil {
		h.logger.Error("plan creation failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// listPlans lists every plan.
func (h *Handler) listPlans(c *gin.Context) {
	plans, err := h.svc.ListPlans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plans)
}

// payments lists settled payments.
func (h *Handler) payments(c *gin.Context) {
	q := pagination.FromContext(c)

	payments, meta, err := h.svc.ListPayments(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, payments, meta)
}

// referrals lists referral rows.
func (h *Handler) referrals(c *gin.Context) {
	q := pagination.FromContext(c)

	referrals, meta, err := h.svc.ListReferrals(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, referrals, meta)
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. A zero
// time means the bound is open.
func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.BadRequest(c, name+" must be formatted YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
