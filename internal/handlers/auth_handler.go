package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/panelmurah/ptero-store/internal/services"
	"github.com/panelmurah/ptero-store/internal/views"
	"github.com/panelmurah/ptero-store/pkg/common"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger  *zap.Logger
	service services.AuthService
}

func NewAuthHandler(logger *zap.Logger, svc services.AuthService) *AuthHandler {
	return &AuthHandler{logger: logger, service: svc}
}

// RegisterRoutes registers the public auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
}

// RegisterProtectedRoutes registers routes that need an active session.
func (h *AuthHandler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/logout", h.Logout)
}

func (h *AuthHandler) Register(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: err.Error(),
		})
		return
	}

	var req views.RegisterRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrInvalidInput,
			Message: "invalid request body",
			Details: err.Error(),
			TraceID: traceID,
		})
		return
	}

	err = h.service.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, services.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrInvalidInput,
			Message: err.Error(),
			TraceID: traceID,
		})
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, common.ErrorResponse{
			Code:    common.ErrInvalidInput,
			Message: err.Error(),
			TraceID: traceID,
		})
	case err != nil:
		h.logger.Error("registration failed", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to register",
			TraceID: traceID,
		})
	default:
		c.JSON(http.StatusCreated, common.APIResponse{
			TraceID: traceID,
			Data: map[string]interface{}{
				"registered": true,
			},
		})
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: err.Error(),
		})
		return
	}

	var req views.LoginRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrInvalidInput,
			Message: "invalid request body",
			Details: err.Error(),
			TraceID: traceID,
		})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, common.ErrorResponse{
			Code:    common.ErrUnauthorized,
			Message: err.Error(),
			TraceID: traceID,
		})
	case err != nil:
		h.logger.Error("login failed", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to log in",
			TraceID: traceID,
		})
	default:
		c.JSON(http.StatusOK, common.APIResponse{
			TraceID: traceID,
			Data: map[string]interface{}{
				"token":    resp.Token,
				"username": resp.Username,
				"role":     resp.Role,
			},
		})
	}
}

func (h *AuthHandler) Logout(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	token := strings.TrimPrefix(c.Request.Header.Get("Authorization"), "Bearer ")
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to log out",
			TraceID: traceID,
		})
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{
		TraceID: traceID,
		Data: map[string]interface{}{
			"loggedOut": true,
		},
	})
}
