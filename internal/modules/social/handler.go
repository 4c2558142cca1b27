package social

import (
	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/middleware"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/response"
	"go.uber.org/zap"
)

// Handler exposes the social connection and publishing endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates the social handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.Named("social")}
}

// RegisterRoutes mounts the social routes. The OAuth callback is
// unauthenticated: Facebook redirects the browser there and the state
// parameter carries the user binding.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	social := rg.Group("/social")
	{
		social.GET("/facebook/auth-url", authMW, h.authURL)
		social.GET("/facebook/callback", h.callback)
		social.GET("/connections", authMW, h.connections)
		social.POST("/connections/cleanup", authMW, h.cleanupTokens)
		social.DELETE("/connections/:id", authMW, h.deactivate)
	}

	rg.POST("/posts/:id/publish", authMW, h.publish)
}

// authURL returns the OAuth dialog URL for the connect flow.
func (h *Handler) authURL(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	authURL, err := h.svc.AuthURL(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("auth url build failed", zap.String("user_id", userID), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"auth_url": authURL})
}

// callback completes the OAuth flow after the Facebook redirect.
func (h *Handler) callback(c *gin.Context) {
	connected, err := h.svc.Callback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		h.logger.Warn("oauth callback failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"connected": connected})
}

// connections lists the caller's active connections.
func (h *Handler) connections(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	conns, err := h.svc.Connections(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("connection listing failed", zap.String("user_id", userID), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, conns)
}

// deactivate disables one connection.
func (h *Handler) deactivate(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := h.svc.Deactivate(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// cleanupTokens deactivates connections whose tokens fail a debug probe.
func (h *Handler) cleanupTokens(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	cleaned, err := h.svc.CleanupTokens(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("token cleanup failed", zap.String("user_id", userID), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deactivated": cleaned})
}

// publish sends a drafted post to the connected page.
func (h *Handler) publish(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	post, err := h.svc.Publish(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if apierror.IsKind(err, apierror.KindUpstream) || apierror.IsKind(err, apierror.KindInternal) {
			h.logger.Error("publish failed",
				zap.String("user_id", userID),
				zap.String("post_id", c.Param("id")),
				zap.Error(err))
		}
		response.Error(c, err)
		return
	}
	response.OK(c, post)
}
