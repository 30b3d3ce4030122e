package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/panelmurah/ptero-store/internal/services"
	"github.com/panelmurah/ptero-store/internal/views"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/catalog"
	"github.com/panelmurah/ptero-store/pkg/common"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

type OrderHandler struct {
	logger  *zap.Logger
	service services.OrderService
	limiter *pkg.DistributedLimiter
}

func NewOrderHandler(logger *zap.Logger, svc services.OrderService, limiter *pkg.DistributedLimiter) *OrderHandler {
	return &OrderHandler{logger: logger, service: svc, limiter: limiter}
}

// RegisterPublicRoutes registers routes that need no session.
func (h *OrderHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/plans", h.ListPlans)
}

// RegisterRoutes registers the session-scoped order routes.
func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id/status", h.GetOrderStatus)
	r.GET("/panels", h.ListPanels)
}

func (h *OrderHandler) ListPlans(c *gin.Context) {
	plans := catalog.Plans()
	out := make([]gin.H, 0, len(plans))
	for _, p := range plans {
		out = append(out, gin.H{
			"id":    p.ID,
			"price": p.Price,
			"ram":   utils.FormatMB(p.MemoryMB),
			"disk":  utils.FormatMB(p.DiskMB),
			"cpu":   utils.FormatCPU(p.CPUPercent),
		})
	}
	c.JSON(http.StatusOK, common.APIResponse{
		Data: map[string]interface{}{
			"plans": out,
		},
	})
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: err.Error(),
		})
		return
	}

	if !h.limiter.Allow(c.Request.Context()) {
		c.JSON(http.StatusTooManyRequests, common.ErrorResponse{
			Code:    common.ErrRateLimited,
			Message: "too many orders, try again shortly",
			TraceID: traceID,
		})
		return
	}

	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.ErrorResponse{
			Code:    common.ErrUnauthorized,
			Message: "invalid session",
			TraceID: traceID,
		})
		return
	}

	var req views.CreateOrderRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrInvalidInput,
			Message: "invalid request body",
			Details: err.Error(),
			TraceID: traceID,
		})
		return
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), userID, c.GetString(pkg.Username), req)
	switch {
	case errors.Is(err, catalog.ErrUnknownPlan):
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrInvalidInput,
			Message: "unknown plan",
			TraceID: traceID,
		})
	case errors.Is(err, services.ErrPaymentCreation):
		c.JSON(http.StatusBadGateway, common.ErrorResponse{
			Code:    common.ErrPaymentFailed,
			Message: "payment gateway unavailable, try again later",
			TraceID: traceID,
		})
	case err != nil:
		h.logger.Error("order creation failed", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to create order",
			TraceID: traceID,
		})
	default:
		c.JSON(http.StatusCreated, common.APIResponse{
			TraceID: traceID,
			Data: map[string]interface{}{
				"order": resp,
			},
		})
	}
}

func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	result, err := h.service.CheckStatus(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrNotFound,
			Message: "order not found",
			TraceID: traceID,
		})
	case err != nil:
		h.logger.Error("status check failed",
			zap.String("trace_id", traceID), zap.String("order_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrServerError,
			Message: "failed to check order status",
			TraceID: traceID,
		})
	default:
		c.JSON(http.StatusOK, common.APIResponse{
			TraceID: traceID,
			Data: map[string]interface{}{
				"result": result,
			},
		})
	}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.ErrorResponse{
			Code:    common.ErrUnauthorized,
			Message: "invalid session",
			TraceID: traceID,
		})
		return
	}

	orders, err := h.service.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("order listing failed", zap.String("trace_id", traceID), zap.Error(err))
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

func (h *OrderHandler) ListPanels(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, common.ErrorResponse{
			Code:    common.ErrUnauthorized,
			Message: "invalid session",
			TraceID: traceID,
		})
		return
	}

	panels, err := h.service.ListUserPanels(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("panel listing failed", zap.String("trace_id", traceID), zap.Error(err))
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

func sessionUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(pkg.UserId))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
