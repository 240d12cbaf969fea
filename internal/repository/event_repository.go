package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yuZuPluZ/tickets/internal/identity"
	"github.com/yuZuPluZ/tickets/internal/model"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

type EventRepository interface {
	// Create publishes a fully built event. Zones must be complete before
	// insertion; they are immutable once the event is visible.
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
}

// EventRepositoryImpl 活動表（記憶體版）
type EventRepositoryImpl struct {
	mu       sync.RWMutex
	registry *identity.Registry
	events   map[int]*model.Event
}

func NewEventRepository(registry *identity.Registry) EventRepository {
	return &EventRepositoryImpl{
		registry: registry,
		events:   make(map[int]*model.Event),
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The service reserves the id up front so the hall claim and the
	// zones can reference the event before it is published.
	if event.ID == 0 {
		event.ID = r.registry.Next(identity.KindEvent)
	}
	event.CreatedAt = time.Now().UTC()
	r.events[event.ID] = event

	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context) ([]*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}
