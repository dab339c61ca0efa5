package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/cart"
	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/pricing"
	"github.com/wearvault/storefront-service/internal/service"
	"github.com/wearvault/storefront-service/pkg/middleware"
)

type OrderHandler struct {
	orders *service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), identity, req, middleware.RequestIDFrom(c))
	if err != nil {
		h.writeSettlementError(c, identity.ID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) writeSettlementError(c *gin.Context, userID string, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Insufficient stock",
			"detail": err.Error(),
		})
	case errors.Is(err, cart.ErrInvalidSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
	case errors.Is(err, pricing.ErrInvalidDuration):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rental duration"})
	case errors.Is(err, service.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction type"})
	case errors.Is(err, service.ErrTotalMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order total does not match cart"})
	default:
		h.logger.Error("Failed to create order",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
	}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}

		h.logger.Error("Failed to list orders",
			zap.String("user_id", identity.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID := c.Param("id")
	order, err := h.orders.GetOrder(c.Request.Context(), identity, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}

		h.logger.Error("Failed to get order",
			zap.String("order_id", orderID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
