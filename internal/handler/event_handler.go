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

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("halls", h.CreateHall)
		router.GET("halls", h.ListHalls)
		router.POST("events", h.CreateEvent)
		router.GET("events", h.ListEvents)
		router.GET("events/:id", h.GetEvent)
	}
}

func (h *EventHandler) CreateHall(c *gin.Context) {
	var req model.CreateHallRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	hall, err := h.service.CreateHall(c, req)
	if err != nil {
		h.handleError(c, err, "CreateHall")
		return
	}

	c.JSON(http.StatusCreated, hall)
}

// ListHallsQuery 場館查詢參數
type ListHallsQuery struct {
	// Available 只列出尚未綁定活動的場館
	Available bool `form:"available"`
}

func (h *EventHandler) ListHalls(c *gin.Context) {
	var query ListHallsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	var halls []*model.Hall
	var err error
	if query.Available {
		halls, err = h.service.ListAvailableHalls(c)
	} else {
		halls, err = h.service.ListHalls(c)
	}
	if err != nil {
		h.handleError(c, err, "ListHalls")
		return
	}

	c.JSON(http.StatusOK, halls)
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req model.CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	event, err := h.service.CreateEvent(c, req)
	if err != nil {
		h.handleError(c, err, "CreateEvent")
		return
	}

	resp, err := h.service.Describe(c, event)
	if err != nil {
		h.handleError(c, err, "CreateEvent")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.service.ListEvents(c)
	if err != nil {
		h.handleError(c, err, "ListEvents")
		return
	}

	responses := make([]*model.EventResponse, 0, len(events))
	for _, event := range events {
		resp, err := h.service.Describe(c, event)
		if err != nil {
			h.handleError(c, err, "ListEvents")
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, responses)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleError(c, apperrors.ErrInvalidInput, "GetEvent")
		return
	}

	event, err := h.service.GetEvent(c, id)
	if err != nil {
		h.handleError(c, err, "GetEvent")
		return
	}

	resp, err := h.service.Describe(c, event)
	if err != nil {
		h.handleError(c, err, "GetEvent")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrPermissionDenied):
		log.Warn("Permission denied")
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	case errors.Is(err, apperrors.ErrDuplicateZone):
		log.Warn("Duplicate zone type")
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate zone type"})
	case errors.Is(err, apperrors.ErrHallInUse):
		log.Warn("Hall already hosts an event")
		c.JSON(http.StatusConflict, gin.H{"error": "Hall already hosts an event"})
	case errors.Is(err, apperrors.ErrHallNotFound):
		log.Warn("Hall not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Hall not found"})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
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
