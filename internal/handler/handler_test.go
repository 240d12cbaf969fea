package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuZuPluZ/tickets/config"
	"github.com/yuZuPluZ/tickets/internal/identity"
	"github.com/yuZuPluZ/tickets/internal/inventory"
	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/queue"
	"github.com/yuZuPluZ/tickets/internal/repository"
	"github.com/yuZuPluZ/tickets/internal/service"
	"github.com/yuZuPluZ/tickets/pkg/logger"
)

var InvalidJSON = `{"invalid": json}`

// create HTTP request with JSON body
func createJSONHTTPRequest(t *testing.T, method, url string, data interface{}) *http.Request {
	t.Helper()

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	req, err := http.NewRequest(method, url, bytes.NewBuffer(jsonData))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// setupRouter 以記憶體元件組出完整 API，行為與 main.go 相同
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.LoadTestConfig()
	registry := identity.NewRegistry()
	inv := inventory.NewManager()

	users := repository.NewUserRepository(registry)
	halls := repository.NewHallRepository(registry)
	events := repository.NewEventRepository(registry)
	orders := repository.NewOrderRepository(registry)
	refunds := repository.NewRefundRepository(registry)
	book := repository.NewTicketBookRepository()
	eventQueue := queue.NewSaleEventQueue(cfg.Queue.BufferSize)

	userService := service.NewUserService(users, book, inv, cfg.Auth.BcryptCost)
	eventService := service.NewEventService(events, halls, users, inv, registry)
	orderService := service.NewOrderService(
		orders, events, users, book, inv,
		service.NewAutoSettler(), eventQueue, logger.WithComponent("order_service"),
	)
	refundService := service.NewRefundService(
		refunds, users, inv, eventQueue, logger.WithComponent("refund_service"),
	)

	router := gin.New()
	NewUserHandler(userService).RegisterRoutes(router)
	NewEventHandler(eventService).RegisterRoutes(router)
	NewOrderHandler(orderService).RegisterRoutes(router)
	NewRefundHandler(refundService).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, createJSONHTTPRequest(t, method, url, body))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func registerUser(t *testing.T, router *gin.Engine, name string, roles []model.Role) model.User {
	t.Helper()

	w := do(t, router, "POST", "/api/v1/users", model.RegisterUserRequest{
		Name:     name,
		Email:    fmt.Sprintf("%s@test.com", name),
		Password: "password123",
		Roles:    roles,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user model.User
	decode(t, w, &user)
	return user
}

func publishEvent(t *testing.T, router *gin.Engine, organizerID int) model.EventResponse {
	t.Helper()

	w := do(t, router, "POST", "/api/v1/halls", model.CreateHallRequest{Size: "Large", Capacity: 1000})
	require.Equal(t, http.StatusCreated, w.Code)

	var hall model.Hall
	decode(t, w, &hall)

	w = do(t, router, "POST", "/api/v1/events", model.CreateEventRequest{
		Name:        "Concert",
		StartsAt:    time.Now().AddDate(0, 1, 0),
		OrganizerID: organizerID,
		HallID:      hall.ID,
		Zones: []model.ZoneSpec{
			{Type: "VIP", Percentage: 0.2, Price: decimal.NewFromInt(150)},
			{Type: "Regular", Percentage: 0.8, Price: decimal.NewFromInt(50)},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var event model.EventResponse
	decode(t, w, &event)
	return event
}

func TestUserRoutes(t *testing.T) {
	t.Run("RegisterAndLogin", func(t *testing.T) {
		router := setupRouter(t)

		user := registerUser(t, router, "john", nil)
		assert.Equal(t, "john", user.Name)

		w := do(t, router, "POST", "/api/v1/auth/login", model.LoginRequest{
			Email:    "john@test.com",
			Password: "password123",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		router := setupRouter(t)

		registerUser(t, router, "john", nil)
		w := do(t, router, "POST", "/api/v1/users", model.RegisterUserRequest{
			Name:     "impostor",
			Email:    "john@test.com",
			Password: "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("BadCredentials", func(t *testing.T) {
		router := setupRouter(t)

		registerUser(t, router, "john", nil)
		w := do(t, router, "POST", "/api/v1/auth/login", model.LoginRequest{
			Email:    "john@test.com",
			Password: "wrongpass",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("BindingError", func(t *testing.T) {
		router := setupRouter(t)

		w := do(t, router, "POST", "/api/v1/users", InvalidJSON)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEventRoutes(t *testing.T) {
	t.Run("PublishAndGet", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})

		event := publishEvent(t, router, organizer.ID)
		require.Len(t, event.Zones, 2)

		w := do(t, router, "GET", fmt.Sprintf("/api/v1/events/%d", event.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var fetched model.EventResponse
		decode(t, w, &fetched)
		assert.Equal(t, event.ID, fetched.ID)
		for _, zone := range fetched.Zones {
			assert.Equal(t, zone.Capacity, zone.Available)
		}
	})

	t.Run("NonOrganizerForbidden", func(t *testing.T) {
		router := setupRouter(t)
		buyer := registerUser(t, router, "buyer", nil)

		w := do(t, router, "POST", "/api/v1/halls", model.CreateHallRequest{Size: "Small", Capacity: 200})
		require.Equal(t, http.StatusCreated, w.Code)
		var hall model.Hall
		decode(t, w, &hall)

		w = do(t, router, "POST", "/api/v1/events", model.CreateEventRequest{
			Name:        "Concert",
			StartsAt:    time.Now().AddDate(0, 1, 0),
			OrganizerID: buyer.ID,
			HallID:      hall.ID,
			Zones: []model.ZoneSpec{
				{Type: "Regular", Percentage: 1.0, Price: decimal.NewFromInt(50)},
			},
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("HallAlreadyInUse", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})

		event := publishEvent(t, router, organizer.ID)

		w := do(t, router, "POST", "/api/v1/events", model.CreateEventRequest{
			Name:        "Second Concert",
			StartsAt:    time.Now().AddDate(0, 2, 0),
			OrganizerID: organizer.ID,
			HallID:      event.HallID,
			Zones: []model.ZoneSpec{
				{Type: "Regular", Percentage: 1.0, Price: decimal.NewFromInt(50)},
			},
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("EventNotFound", func(t *testing.T) {
		router := setupRouter(t)

		w := do(t, router, "GET", "/api/v1/events/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderRoutes(t *testing.T) {
	t.Run("Purchase", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})
		buyer := registerUser(t, router, "buyer", nil)
		event := publishEvent(t, router, organizer.ID)

		w := do(t, router, "POST", "/api/v1/orders", model.PurchaseRequest{
			BuyerID: buyer.ID,
			EventID: event.ID,
			Zones:   map[string]int{"VIP": 50, "Regular": 100},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var order model.OrderResponse
		decode(t, w, &order)
		assert.Equal(t, model.OrderStatusCompleted, order.Status)
		assert.Len(t, order.TicketIDs, 150)
		assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(12500)))

		// 買家票夾同步更新
		w = do(t, router, "GET", fmt.Sprintf("/api/v1/users/%d/tickets", buyer.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tickets []model.TicketResponse
		decode(t, w, &tickets)
		assert.Len(t, tickets, 150)
	})

	t.Run("InsufficientInventory", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})
		buyer := registerUser(t, router, "buyer", nil)
		event := publishEvent(t, router, organizer.ID)

		w := do(t, router, "POST", "/api/v1/orders", model.PurchaseRequest{
			BuyerID: buyer.ID,
			EventID: event.ID,
			Zones:   map[string]int{"VIP": 500},
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		router := setupRouter(t)

		w := do(t, router, "GET", "/api/v1/orders/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		router := setupRouter(t)

		w := do(t, router, "GET", "/api/v1/orders/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListByBuyer", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})
		buyer := registerUser(t, router, "buyer", nil)
		event := publishEvent(t, router, organizer.ID)

		w := do(t, router, "POST", "/api/v1/orders", model.PurchaseRequest{
			BuyerID: buyer.ID,
			EventID: event.ID,
			Zones:   map[string]int{"Regular": 2},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(t, router, "GET", fmt.Sprintf("/api/v1/orders?buyer_id=%d", buyer.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var orders []model.OrderResponse
		decode(t, w, &orders)
		assert.Len(t, orders, 1)
	})
}

func TestRefundRoutes(t *testing.T) {
	t.Run("RequestApprove", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})
		buyer := registerUser(t, router, "buyer", nil)
		event := publishEvent(t, router, organizer.ID)

		w := do(t, router, "POST", "/api/v1/orders", model.PurchaseRequest{
			BuyerID: buyer.ID,
			EventID: event.ID,
			Zones:   map[string]int{"VIP": 1},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var order model.OrderResponse
		decode(t, w, &order)

		w = do(t, router, "POST", "/api/v1/refunds", model.CreateRefundRequest{
			TicketID: order.TicketIDs[0],
			BuyerID:  buyer.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var request model.RefundRequest
		decode(t, w, &request)
		assert.Equal(t, model.RefundStatusPending, request.Status)

		w = do(t, router, "PUT", fmt.Sprintf("/api/v1/refunds/%d/approve", request.ID), model.ResolveRefundRequest{
			ApproverID: organizer.ID,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		// Resolving again conflicts.
		w = do(t, router, "PUT", fmt.Sprintf("/api/v1/refunds/%d/reject", request.ID), model.ResolveRefundRequest{
			ApproverID: organizer.ID,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ApproveRequiresOrganizer", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})
		buyer := registerUser(t, router, "buyer", nil)
		event := publishEvent(t, router, organizer.ID)

		w := do(t, router, "POST", "/api/v1/orders", model.PurchaseRequest{
			BuyerID: buyer.ID,
			EventID: event.ID,
			Zones:   map[string]int{"VIP": 1},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var order model.OrderResponse
		decode(t, w, &order)

		w = do(t, router, "POST", "/api/v1/refunds", model.CreateRefundRequest{
			TicketID: order.TicketIDs[0],
			BuyerID:  buyer.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var request model.RefundRequest
		decode(t, w, &request)

		w = do(t, router, "PUT", fmt.Sprintf("/api/v1/refunds/%d/approve", request.ID), model.ResolveRefundRequest{
			ApproverID: buyer.ID,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		router := setupRouter(t)
		organizer := registerUser(t, router, "organizer", []model.Role{model.RoleBuyer, model.RoleEventOrganizer})

		w := do(t, router, "PUT", "/api/v1/refunds/999/approve", model.ResolveRefundRequest{
			ApproverID: organizer.ID,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
