package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erplink/bridge/internal/infrastructure/auth"
	"github.com/erplink/bridge/internal/interfaces/http/dto"
)

// AuthHandler issues operator tokens for the operations API
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtService *auth.JWTService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RegisterRoutes mounts the token endpoint
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/token", h.Token)
}

// TokenRequest is the operator login payload
type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Token authenticates the operator and issues a bearer token
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.jwtService.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			h.logger.Warn("operator login rejected",
				zap.String("username", req.Username),
				zap.String("remote", c.ClientIP()),
			)
			h.Unauthorized(c, dto.ErrCodeUnauthorized, "Invalid username or password")
			return
		}
		h.InternalError(c, "Token issuance failed")
		return
	}

	h.Success(c, token)
}
