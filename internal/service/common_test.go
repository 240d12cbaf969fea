package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yuZuPluZ/tickets/config"
	"github.com/yuZuPluZ/tickets/internal/identity"
	"github.com/yuZuPluZ/tickets/internal/inventory"
	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/queue"
	"github.com/yuZuPluZ/tickets/internal/repository"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
	"github.com/yuZuPluZ/tickets/pkg/logger"
)

type testStack struct {
	registry *identity.Registry
	inv      inventory.Manager
	users    repository.UserRepository
	halls    repository.HallRepository
	events   repository.EventRepository
	orders   repository.OrderRepository
	refunds  repository.RefundRepository
	book     repository.TicketBookRepository
	queue    queue.SaleEventQueue

	userService   UserService
	eventService  EventService
	orderService  OrderService
	refundService RefundService
}

// declineSettler 測試用：結算一律拒絕
type declineSettler struct{}

func (s *declineSettler) Settle(ctx context.Context, payment *model.Payment) error {
	payment.Status = model.PaymentStatusFailed
	return apperrors.ErrPaymentDeclined
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	return newTestStackWithSettler(t, NewAutoSettler())
}

func newTestStackWithSettler(t *testing.T, settler PaymentSettler) *testStack {
	t.Helper()

	cfg := config.LoadTestConfig()
	registry := identity.NewRegistry()
	inv := inventory.NewManager()

	s := &testStack{
		registry: registry,
		inv:      inv,
		users:    repository.NewUserRepository(registry),
		halls:    repository.NewHallRepository(registry),
		events:   repository.NewEventRepository(registry),
		orders:   repository.NewOrderRepository(registry),
		refunds:  repository.NewRefundRepository(registry),
		book:     repository.NewTicketBookRepository(),
		queue:    queue.NewSaleEventQueue(cfg.Queue.BufferSize),
	}

	s.userService = NewUserService(s.users, s.book, inv, cfg.Auth.BcryptCost)
	s.eventService = NewEventService(s.events, s.halls, s.users, inv, registry)
	s.orderService = NewOrderService(
		s.orders, s.events, s.users, s.book, inv,
		settler, s.queue, logger.WithComponent("order_service"),
	)
	s.refundService = NewRefundService(
		s.refunds, s.users, inv, s.queue, logger.WithComponent("refund_service"),
	)
	return s
}

func (s *testStack) createBuyer(t *testing.T, name string) *model.User {
	t.Helper()

	user, err := s.userService.Register(context.Background(), model.RegisterUserRequest{
		Name:     name,
		Email:    fmt.Sprintf("%s@test.com", name),
		Password: "password123",
		Roles:    []model.Role{model.RoleBuyer},
	})
	require.NoError(t, err)
	return user
}

func (s *testStack) createOrganizer(t *testing.T, name string) *model.User {
	t.Helper()

	user, err := s.userService.Register(context.Background(), model.RegisterUserRequest{
		Name:     name,
		Email:    fmt.Sprintf("%s@test.com", name),
		Password: "password123",
		Roles:    []model.Role{model.RoleBuyer, model.RoleEventOrganizer},
	})
	require.NoError(t, err)
	return user
}

// createConcertEvent 預設場景：1000 人場館，VIP 20%/$150、Regular 80%/$50
func (s *testStack) createConcertEvent(t *testing.T, organizerID int) *model.Event {
	t.Helper()
	ctx := context.Background()

	hall, err := s.eventService.CreateHall(ctx, model.CreateHallRequest{Size: "Large", Capacity: 1000})
	require.NoError(t, err)

	event, err := s.eventService.CreateEvent(ctx, model.CreateEventRequest{
		Name:        "Concert",
		StartsAt:    time.Now().AddDate(0, 1, 0),
		OrganizerID: organizerID,
		HallID:      hall.ID,
		Zones: []model.ZoneSpec{
			{Type: "VIP", Percentage: 0.2, Price: decimal.NewFromInt(150)},
			{Type: "Regular", Percentage: 0.8, Price: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)
	return event
}

func (s *testStack) availableCount(t *testing.T, event *model.Event, zoneType string) int {
	t.Helper()

	zone, ok := event.Zone(zoneType)
	require.True(t, ok)
	count, err := s.inv.AvailableCount(context.Background(), zone.ID)
	require.NoError(t, err)
	return count
}
