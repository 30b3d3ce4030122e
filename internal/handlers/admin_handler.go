package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panelmurah/ptero-store/internal/services"
	"github.com/panelmurah/ptero-store/pkg/common"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

type AdminHandler struct {
	logger  *zap.Logger
	service services.AdminService
}

func NewAdminHandler(logger *zap.Logger, svc services.AdminService) *AdminHandler {
	return &AdminHandler{logger: logger, service: svc}
}

// RegisterRoutes registers the admin routes. The group must already be gated
// by the auth and admin-role middleware.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/orders", h.ListOrders)
	r.GET("/panels", h.ListPanels)
	r.DELETE("/panels/:serverId", h.DeletePanel)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	orders, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("admin order listing failed", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to list orders",
			TraceID: traceID,
		})
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{
		TraceID: traceID,
		Data: map[string]interface{}{
			"orders": orders,
		},
	})
}

func (h *AdminHandler) ListPanels(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	panels, err := h.service.ListPanels(c.Request.Context())
	if err != nil {
		h.logger.Error("admin panel listing failed", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to list panels",
			TraceID: traceID,
		})
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{
		TraceID: traceID,
		Data: map[string]interface{}{
			"panels": panels,
		},
	})
}

func (h *AdminHandler) DeletePanel(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	serverID, err := strconv.Atoi(c.Param("serverId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrInvalidInput,
			Message: "invalid server id",
			TraceID: traceID,
		})
		return
	}

	err = h.service.DeletePanel(c.Request.Context(), serverID)
	switch {
	case errors.Is(err, services.ErrPanelNotFound):
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrNotFound,
			Message: "panel not found",
			TraceID: traceID,
		})
	case err != nil:
		h.logger.Error("panel deletion failed",
			zap.String("trace_id", traceID), zap.Int("server_id", serverID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to delete panel",
			TraceID: traceID,
		})
	default:
		c.JSON(http.StatusOK, common.APIResponse{
			TraceID: traceID,
			Data: map[string]interface{}{
				"deleted": true,
			},
		})
	}
}
