package service

import (
	"context"

	"github.com/yuZuPluZ/tickets/internal/identity"
	"github.com/yuZuPluZ/tickets/internal/inventory"
	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/repository"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

// EventService 場館與活動目錄
type EventService interface {
	CreateHall(ctx context.Context, req model.CreateHallRequest) (*model.Hall, error)
	ListHalls(ctx context.Context) ([]*model.Hall, error)
	ListAvailableHalls(ctx context.Context) ([]*model.Hall, error)
	// CreateEvent 建立活動並一次掛上所有分區。主辦人角色、分區規格與
	// 場館占用都在建立任何東西之前驗證完畢。
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	ListEvents(ctx context.Context) ([]*model.Event, error)
	GetEvent(ctx context.Context, id int) (*model.Event, error)
	// Describe 活動概況（含各分區即時可售數，僅供展示）
	Describe(ctx context.Context, event *model.Event) (*model.EventResponse, error)
	// AvailableCount 單一分區的即時可售數
	AvailableCount(ctx context.Context, eventID int, zoneType string) (int, error)
}

type EventServiceImpl struct {
	events    repository.EventRepository
	halls     repository.HallRepository
	users     repository.UserRepository
	inventory inventory.Manager
	registry  *identity.Registry
}

func NewEventService(
	events repository.EventRepository,
	halls repository.HallRepository,
	users repository.UserRepository,
	inv inventory.Manager,
	registry *identity.Registry,
) EventService {
	return &EventServiceImpl{
		events:    events,
		halls:     halls,
		users:     users,
		inventory: inv,
		registry:  registry,
	}
}

func (s *EventServiceImpl) CreateHall(ctx context.Context, req model.CreateHallRequest) (*model.Hall, error) {
	hall := &model.Hall{
		Size:     req.Size,
		Capacity: req.Capacity,
	}
	return s.halls.Create(ctx, hall)
}

func (s *EventServiceImpl) ListHalls(ctx context.Context) ([]*model.Hall, error) {
	return s.halls.List(ctx)
}

func (s *EventServiceImpl) ListAvailableHalls(ctx context.Context) ([]*model.Hall, error) {
	return s.halls.ListAvailable(ctx)
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	organizer, err := s.users.FindByID(ctx, req.OrganizerID)
	if err != nil {
		return nil, err
	}
	if !organizer.HasRole(model.RoleEventOrganizer) {
		return nil, apperrors.ErrPermissionDenied
	}

	hall, err := s.halls.FindByID(ctx, req.HallID)
	if err != nil {
		return nil, err
	}

	if len(req.Zones) == 0 {
		return nil, apperrors.ErrInvalidInput
	}
	seen := make(map[string]bool, len(req.Zones))
	for _, spec := range req.Zones {
		if spec.Type == "" || spec.Percentage <= 0 || spec.Price.IsNegative() {
			return nil, apperrors.ErrInvalidInput
		}
		if seen[spec.Type] {
			return nil, apperrors.ErrDuplicateZone
		}
		seen[spec.Type] = true
	}

	eventID := s.registry.Next(identity.KindEvent)

	// Check-and-set: one live event per hall.
	if err := s.halls.ClaimForEvent(ctx, hall.ID, eventID); err != nil {
		return nil, err
	}

	event := &model.Event{
		ID:          eventID,
		Name:        req.Name,
		StartsAt:    req.StartsAt,
		OrganizerID: organizer.ID,
		HallID:      hall.ID,
		Description: req.Description,
		MediaRef:    req.MediaRef,
		Zones:       make(map[string]*model.Zone, len(req.Zones)),
	}

	for _, spec := range req.Zones {
		zone := s.buildZone(event, hall, spec)
		event.Zones[zone.Type] = zone
		s.inventory.Register(zone)
	}

	return s.events.Create(ctx, event)
}

// buildZone mints the zone and its entire ticket pool. Capacity is
// floor(hall capacity × percentage) and fixed for the zone's lifetime.
func (s *EventServiceImpl) buildZone(event *model.Event, hall *model.Hall, spec model.ZoneSpec) *model.Zone {
	capacity := int(float64(hall.Capacity) * spec.Percentage)

	zone := &model.Zone{
		ID:       s.registry.Next(identity.KindZone),
		Type:     spec.Type,
		EventID:  event.ID,
		Capacity: capacity,
		Price:    spec.Price,
		Tickets:  make([]*model.Ticket, 0, capacity),
	}

	firstID := s.registry.NextN(identity.KindTicket, capacity)
	for i := 0; i < capacity; i++ {
		zone.Tickets = append(zone.Tickets, &model.Ticket{
			ID:      firstID + i,
			ZoneID:  zone.ID,
			EventID: event.ID,
			Status:  model.TicketStatusAvailable,
		})
	}
	return zone
}

func (s *EventServiceImpl) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return s.events.List(ctx)
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id int) (*model.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *EventServiceImpl) AvailableCount(ctx context.Context, eventID int, zoneType string) (int, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	zone, ok := event.Zone(zoneType)
	if !ok {
		return 0, apperrors.ErrZoneNotFound
	}
	return s.inventory.AvailableCount(ctx, zone.ID)
}

func (s *EventServiceImpl) Describe(ctx context.Context, event *model.Event) (*model.EventResponse, error) {
	resp := &model.EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		StartsAt:    event.StartsAt,
		OrganizerID: event.OrganizerID,
		HallID:      event.HallID,
		Description: event.Description,
		MediaRef:    event.MediaRef,
		Zones:       make([]model.ZoneSummary, 0, len(event.Zones)),
	}

	for _, zoneType := range event.ZoneTypes() {
		zone := event.Zones[zoneType]
		available, err := s.inventory.AvailableCount(ctx, zone.ID)
		if err != nil {
			return nil, err
		}
		resp.Zones = append(resp.Zones, model.ZoneSummary{
			ID:        zone.ID,
			Type:      zone.Type,
			Capacity:  zone.Capacity,
			Price:     zone.Price,
			Available: available,
		})
	}
	return resp, nil
}
