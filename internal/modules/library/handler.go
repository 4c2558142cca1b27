package library

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/middleware"
	"github.com/postcraft/core/internal/pkg/apierror"
	"github.com/postcraft/core/internal/pkg/pagination"
	"github.com/postcraft/core/internal/pkg/response"
	"go.uber.org/zap"
)

// Handler exposes the content library endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates the library handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.Named("library")}
}

// RegisterRoutes mounts the library routes. The public image routes skip
// authentication so social-network crawlers can fetch them.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	content := rg.Group("/content", authMW)
	{
		content.POST("/batch-upload", h.batchUpload)
		content.GET("/pending", h.pending)
		content.PUT("/:id/description", h.updateDescription)
		content.GET("/:id/file", h.file)
		content.GET("/:id/thumbnail", h.thumbnail)
		content.DELETE("/:id", h.delete)
	}

	rg.GET("/public/image/:id", h.publicImage)
}

// batchUpload ingests a multipart batch of images.
func (h *Handler) batchUpload(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.BadRequest(c, "no files provided")
		return
	}

	meta := UploadMeta{
		AttributedMonth: c.PostForm("attributed_month"),
		UploadType:      c.PostForm("upload_type"),
		CommonTitle:     c.PostForm("common_title"),
		CommonContext:   c.PostForm("common_context"),
	}

	result := h.svc.Upload(c.Request.Context(), userID, files, meta)
	response.OK(c, result)
}

// pending lists the user's gallery page.
func (h *Handler) pending(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	q := pagination.FromContext(c)

	result, err := h.svc.ListPending(c.Request.Context(), userID, q)
	if err != nil {
		h.logger.Error("pending listing failed", zap.String("user_id", userID), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// updateDescription upserts the description of one item.
func (h *Handler) updateDescription(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var dto descriptionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.svc.UpdateDescription(c.Request.Context(), userID, c.Param("id"), dto.Description); err != nil {
		if !apierror.IsKind(err, apierror.KindNotFound) {
			h.logger.Error("description update failed", zap.String("id", c.Param("id")), zap.Error(err))
		}
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id"), "description": dto.Description})
}

// file serves the full image bytes to the owner.
func (h *Handler) file(c *gin.Context) {
	h.serveOwned(c, h.svc.GetFile)
}

// thumbnail serves the thumbnail bytes to the owner.
func (h *Handler) thumbnail(c *gin.Context) {
	h.serveOwned(c, h.svc.GetThumbnail)
}

// publicImage serves image bytes without authentication. Crawlers need a
// direct 200 with an image content type, a permissive CORS header and a
// long cache lifetime; a redirect here breaks link previews.
func (h *Handler) publicImage(c *gin.Context) {
	id := splitImageID(c.Param("id"))

	data, contentType, err := h.svc.GetPublic(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Cache-Control", "public, max-age=86400, immutable")
	c.Data(200, contentType, data)
}

// delete removes an item and its stored bytes.
func (h *Handler) delete(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if !apierror.IsKind(err, apierror.KindNotFound) {
			h.logger.Error("content delete failed", zap.String("id", c.Param("id")), zap.Error(err))
		}
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) serveOwned(c *gin.Context, fetch func(ctx context.Context, userID, id string) ([]byte, string, error)) {
	userID := middleware.CurrentUserID(c)

	data, contentType, err := fetch(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(200, contentType, data)
}
