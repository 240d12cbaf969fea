package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/service"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
	"github.com/yuZuPluZ/tickets/pkg/logger"
)

type RefundHandler struct {
	service service.RefundService
}

func NewRefundHandler(service service.RefundService) *RefundHandler {
	return &RefundHandler{service: service}
}

func (h *RefundHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("refunds", h.Request)
		router.GET("refunds", h.List)
		router.GET("refunds/:id", h.Get)
		router.PUT("refunds/:id/approve", h.Approve)
		router.PUT("refunds/:id/reject", h.Reject)
	}
}

func (h *RefundHandler) Request(c *gin.Context) {
	var req model.CreateRefundRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	request, err := h.service.Request(c, req)
	if err != nil {
		h.handleError(c, err, "Request")
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *RefundHandler) List(c *gin.Context) {
	requests, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RefundHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrInvalidInput, "Get")
		return
	}

	request, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "Get")
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *RefundHandler) Approve(c *gin.Context) {
	h.resolve(c, "Approve", h.service.Approve)
}

func (h *RefundHandler) Reject(c *gin.Context) {
	h.resolve(c, "Reject", h.service.Reject)
}

func (h *RefundHandler) resolve(c *gin.Context, operation string, fn func(ctx context.Context, requestID, approverID int) error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrInvalidInput, operation)
		return
	}

	var req model.ResolveRefundRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	if err := fn(c, id, req.ApproverID); err != nil {
		h.handleError(c, err, operation)
		return
	}

	c.Status(http.StatusOK)
}

func (h *RefundHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrRefundNotPending):
		log.Warn("Refund request is not pending")
		c.JSON(http.StatusConflict, gin.H{"error": "Refund request is not pending"})
	case errors.Is(err, apperrors.ErrTicketNotOwned):
		log.Warn("Ticket not owned by user")
		c.JSON(http.StatusForbidden, gin.H{"error": "Ticket not owned by user"})
	case errors.Is(err, apperrors.ErrPermissionDenied):
		log.Warn("Permission denied")
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	case errors.Is(err, apperrors.ErrRefundNotFound):
		log.Warn("Refund request not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Refund request not found"})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
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
