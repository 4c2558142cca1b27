package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/postcraft/core/internal/middleware"
	"github.com/postcraft/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.Named("auth")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.GET("/me", authMW, h.me)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(c.Request.Context(), &dto)
	if err != nil {
		h.logger.Warn("register failed", zap.String("email", dto.Email), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Created(c, u)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, _, err := h.svc.Login(c.Request.Context(), dto.Email, dto.Password)
	if err != nil {
		h.logger.Warn("login failed", zap.String("email", dto.Email), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token})
}

func (h *Handler) me(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.logger.Warn("profile lookup failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}
