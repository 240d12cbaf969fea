package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/yuZuPluZ/tickets/config"
	"github.com/yuZuPluZ/tickets/internal/handler"
	"github.com/yuZuPluZ/tickets/internal/identity"
	"github.com/yuZuPluZ/tickets/internal/inventory"
	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/queue"
	"github.com/yuZuPluZ/tickets/internal/repository"
	"github.com/yuZuPluZ/tickets/internal/service"
	"github.com/yuZuPluZ/tickets/internal/worker"
	"github.com/yuZuPluZ/tickets/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	registry := identity.NewRegistry()
	inv := inventory.NewManager()

	userRepo := repository.NewUserRepository(registry)
	hallRepo := repository.NewHallRepository(registry)
	eventRepo := repository.NewEventRepository(registry)
	orderRepo := repository.NewOrderRepository(registry)
	refundRepo := repository.NewRefundRepository(registry)
	ticketBook := repository.NewTicketBookRepository()

	saleQueue := queue.NewSaleEventQueue(cfg.Queue.BufferSize)
	auditWorker := worker.NewAuditWorker(saleQueue)
	if err := auditWorker.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start audit worker: %v", err)
	}

	userService := service.NewUserService(userRepo, ticketBook, inv, cfg.Auth.BcryptCost)
	eventService := service.NewEventService(eventRepo, hallRepo, userRepo, inv, registry)
	orderService := service.NewOrderService(
		orderRepo, eventRepo, userRepo, ticketBook, inv,
		service.NewAutoSettler(), saleQueue, logger.WithComponent("order_service"),
	)
	refundService := service.NewRefundService(
		refundRepo, userRepo, inv, saleQueue, logger.WithComponent("refund_service"),
	)

	if cfg.SeedDemo {
		if err := seedDemo(userService, eventService); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewUserHandler(userService).RegisterRoutes(router)
	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewOrderHandler(orderService).RegisterRoutes(router)
	handler.NewRefundHandler(refundService).RegisterRoutes(router)

	if err := router.Run(cfg.Server.Addr()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// seedDemo loads the sample catalog: one organizer and three events spread
// over three halls.
func seedDemo(users service.UserService, events service.EventService) error {
	ctx := context.Background()

	organizer, err := users.Register(ctx, model.RegisterUserRequest{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "password123",
		Roles:    []model.Role{model.RoleBuyer, model.RoleEventOrganizer},
	})
	if err != nil {
		return err
	}

	halls := []model.CreateHallRequest{
		{Size: "Large", Capacity: 1000},
		{Size: "Medium", Capacity: 500},
		{Size: "Small", Capacity: 200},
	}
	hallIDs := make([]int, 0, len(halls))
	for _, req := range halls {
		hall, err := events.CreateHall(ctx, req)
		if err != nil {
			return err
		}
		hallIDs = append(hallIDs, hall.ID)
	}

	demoEvents := []model.CreateEventRequest{
		{
			Name:        "Concert",
			StartsAt:    time.Now().AddDate(0, 1, 0),
			OrganizerID: organizer.ID,
			HallID:      hallIDs[0],
			Zones: []model.ZoneSpec{
				{Type: "VIP", Percentage: 0.2, Price: decimal.NewFromInt(150)},
				{Type: "Regular", Percentage: 0.8, Price: decimal.NewFromInt(50)},
			},
		},
		{
			Name:        "Theatre Play",
			StartsAt:    time.Now().AddDate(0, 2, 0),
			OrganizerID: organizer.ID,
			HallID:      hallIDs[1],
			Zones: []model.ZoneSpec{
				{Type: "VIP", Percentage: 0.1, Price: decimal.NewFromInt(100)},
				{Type: "Regular", Percentage: 0.9, Price: decimal.NewFromInt(30)},
			},
		},
		{
			Name:        "Conference",
			StartsAt:    time.Now().AddDate(0, 3, 0),
			OrganizerID: organizer.ID,
			HallID:      hallIDs[2],
			Zones: []model.ZoneSpec{
				{Type: "Regular", Percentage: 1.0, Price: decimal.NewFromInt(20)},
			},
		},
	}
	for _, req := range demoEvents {
		if _, err := events.CreateEvent(ctx, req); err != nil {
			return err
		}
	}
	return nil
}
