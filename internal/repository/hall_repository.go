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

type HallRepository interface {
	Create(ctx context.Context, hall *model.Hall) (*model.Hall, error)
	List(ctx context.Context) ([]*model.Hall, error)
	// ListAvailable 僅回傳尚未綁定活動的場館
	ListAvailable(ctx context.Context) ([]*model.Hall, error)
	FindByID(ctx context.Context, id int) (*model.Hall, error)
	// ClaimForEvent binds the hall to an event, check-and-set under the
	// table lock. One live event per hall.
	ClaimForEvent(ctx context.Context, hallID int, eventID int) error
}

// HallRepositoryImpl 場館表（記憶體版）
type HallRepositoryImpl struct {
	mu       sync.RWMutex
	registry *identity.Registry
	halls    map[int]*model.Hall
	occupied map[int]int // hall id → event id
}

func NewHallRepository(registry *identity.Registry) HallRepository {
	return &HallRepositoryImpl{
		registry: registry,
		halls:    make(map[int]*model.Hall),
		occupied: make(map[int]int),
	}
}

func (r *HallRepositoryImpl) Create(ctx context.Context, hall *model.Hall) (*model.Hall, error) {
	if hall.Capacity < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hall.ID = r.registry.Next(identity.KindHall)
	hall.CreatedAt = time.Now().UTC()
	r.halls[hall.ID] = hall

	return hall, nil
}

func (r *HallRepositoryImpl) List(ctx context.Context) ([]*model.Hall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	halls := make([]*model.Hall, 0, len(r.halls))
	for _, h := range r.halls {
		halls = append(halls, h)
	}
	sortHalls(halls)
	return halls, nil
}

func (r *HallRepositoryImpl) ListAvailable(ctx context.Context) ([]*model.Hall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	halls := make([]*model.Hall, 0, len(r.halls))
	for id, h := range r.halls {
		if _, taken := r.occupied[id]; !taken {
			halls = append(halls, h)
		}
	}
	sortHalls(halls)
	return halls, nil
}

func (r *HallRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Hall, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hall, ok := r.halls[id]
	if !ok {
		return nil, apperrors.ErrHallNotFound
	}
	return hall, nil
}

func (r *HallRepositoryImpl) ClaimForEvent(ctx context.Context, hallID int, eventID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.halls[hallID]; !ok {
		return apperrors.ErrHallNotFound
	}
	if _, taken := r.occupied[hallID]; taken {
		return apperrors.ErrHallInUse
	}
	r.occupied[hallID] = eventID
	return nil
}

func sortHalls(halls []*model.Hall) {
	sort.Slice(halls, func(i, j int) bool { return halls[i].ID < halls[j].ID })
}
