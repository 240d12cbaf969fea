package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/service"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
	"github.com/yuZuPluZ/tickets/pkg/logger"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("orders", h.Purchase)
		router.GET("orders/:id", h.GetOrder)
		router.GET("orders", h.ListOrders)
	}
}

func (h *OrderHandler) Purchase(c *gin.Context) {
	var req model.PurchaseRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	order, err := h.service.Purchase(c, req)
	if err != nil {
		h.handleError(c, err, "Purchase")
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrInvalidInput, "GetOrder")
		return
	}

	order, err := h.service.GetOrderByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetOrder")
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ListOrdersQuery 訂單查詢參數
type ListOrdersQuery struct {
	BuyerID int `form:"buyer_id" binding:"required"`
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	orders, err := h.service.ListOrdersByBuyer(c, query.BuyerID)
	if err != nil {
		h.handleError(c, err, "ListOrders")
		return
	}

	responses := make([]model.OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, responses)
}

func toOrderResponse(order *model.Order) model.OrderResponse {
	ticketIDs := make([]int, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		ticketIDs = append(ticketIDs, t.ID)
	}
	return model.OrderResponse{
		ID:         order.ID,
		RequestID:  order.RequestID.String(),
		BuyerID:    order.BuyerID,
		TicketIDs:  ticketIDs,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt.Format(time.RFC3339),
	}
}

func (h *OrderHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInsufficientInventory):
		log.Warn("Insufficient inventory")
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient inventory"})
	case errors.Is(err, apperrors.ErrPaymentDeclined):
		log.Warn("Payment declined")
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment declined"})
	case errors.Is(err, apperrors.ErrOrderNotPending):
		log.Warn("Order is not pending")
		c.JSON(http.StatusConflict, gin.H{"error": "Order is not pending"})
	case errors.Is(err, apperrors.ErrEmptyOrder):
		log.Warn("Order has no tickets")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order has no tickets"})
	case errors.Is(err, apperrors.ErrZoneNotFound):
		log.Warn("Zone not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
