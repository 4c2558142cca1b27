package posts

import (
	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/middleware"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/pagination"
	"github.com/postcraft/core/internal/pkg/response"
	"go.uber.org/zap"
)

// Handler exposes the generated-posts endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates the posts handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.Named("posts")}
}

// RegisterRoutes mounts the posts routes. The publish route is owned by
// the social module since it needs a platform connection.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	posts := rg.Group("/posts", authMW)
	{
		posts.POST("/generate", h.generate)
		posts.GET("/generate/:taskID", h.generateStatus)
		posts.GET("", h.list)
		posts.PUT("/:id", h.modify)
		posts.PUT("/:id/attach-image", h.attachImage)
		posts.PUT("/:id/validate", h.validate)
		posts.DELETE("/:id", h.delete)
	}
}

// generate enqueues AI drafting for one month.
func (h *Handler) generate(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var dto GenerateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.svc.Generate(c.Request.Context(), userID, dto)
	if err != nil {
		if !apierror.IsKind(err, apierror.KindValidation) {
			h.logger.Error("generation enqueue failed", zap.String("user_id", userID), zap.Error(err))
		}
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}

// generateStatus polls a generation task.
func (h *Handler) generateStatus(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	resp, err := h.svc.TaskStatus(c.Request.Context(), userID, c.Param("taskID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}

// list returns the user's posts.
func (h *Handler) list(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	q := pagination.FromContext(c)

	posts, meta, err := h.svc.List(c.Request.Context(), userID, c.Query("month"), q)
	if err != nil {
		h.logger.Error("post listing failed", zap.String("user_id", userID), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Paged(c, posts, meta)
}

// modify edits a post.
func (h *Handler) modify(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var dto ModifyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.svc.Modify(c.Request.Context(), userID, c.Param("id"), dto); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id"), "status": "modified"})
}

// attachImage binds a visual to a post.
func (h *Handler) attachImage(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var dto AttachImageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "image_source and image_id are required")
		return
	}

	if err := h.svc.AttachImage(c.Request.Context(), userID, c.Param("id"), dto); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id"), "visual_id": dto.ImageID})
}

// validate marks a post ready for publication.
func (h *Handler) validate(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := h.svc.Validate(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id"), "status": "validated"})
}

// delete removes a post.
func (h *Handler) delete(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
