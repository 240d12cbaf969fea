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

type RefundRepository interface {
	Create(ctx context.Context, request *model.RefundRequest) (*model.RefundRequest, error)
	FindByID(ctx context.Context, id int) (*model.RefundRequest, error)
	List(ctx context.Context) ([]*model.RefundRequest, error)
	// Resolve consumes a pending request exactly once. apply runs inside
	// the guarded section; if it fails the request stays pending. approve
	// and reject on the same request are mutually exclusive here.
	Resolve(ctx context.Context, id int, target model.RefundStatus, apply func(*model.RefundRequest) error) error
}

// RefundRepositoryImpl 退票申請表（記憶體版）
type RefundRepositoryImpl struct {
	mu       sync.RWMutex
	registry *identity.Registry
	requests map[int]*model.RefundRequest
}

func NewRefundRepository(registry *identity.Registry) RefundRepository {
	return &RefundRepositoryImpl{
		registry: registry,
		requests: make(map[int]*model.RefundRequest),
	}
}

func (r *RefundRepositoryImpl) Create(ctx context.Context, request *model.RefundRequest) (*model.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request.ID = r.registry.Next(identity.KindRefund)
	request.Status = model.RefundStatusPending
	request.CreatedAt = time.Now().UTC()
	r.requests[request.ID] = request

	return request, nil
}

func (r *RefundRepositoryImpl) FindByID(ctx context.Context, id int) (*model.RefundRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, apperrors.ErrRefundNotFound
	}
	clone := *request
	return &clone, nil
}

func (r *RefundRepositoryImpl) List(ctx context.Context) ([]*model.RefundRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requests := make([]*model.RefundRequest, 0, len(r.requests))
	for _, req := range r.requests {
		clone := *req
		requests = append(requests, &clone)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (r *RefundRepositoryImpl) Resolve(ctx context.Context, id int, target model.RefundStatus, apply func(*model.RefundRequest) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return apperrors.ErrRefundNotFound
	}
	if !request.Status.CanTransitionTo(target) {
		return apperrors.ErrRefundNotPending
	}

	if apply != nil {
		if err := apply(request); err != nil {
			return err
		}
	}

	request.Status = target
	return nil
}
