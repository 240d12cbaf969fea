package handler

import (
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

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("users", h.Register)
		router.POST("auth/login", h.Login)
		router.GET("users/:id/tickets", h.MyTickets)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterUserRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.Register(c, req)
	if err != nil {
		h.handleError(c, err, "Register")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.Authenticate(c, req.Email, req.Password)
	if err != nil {
		h.handleError(c, err, "Login")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) MyTickets(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrInvalidInput, "MyTickets")
		return
	}

	tickets, err := h.service.MyTickets(c, id)
	if err != nil {
		h.handleError(c, err, "MyTickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *UserHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEmailTaken):
		log.Warn("Email already registered")
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		log.Warn("Invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
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
