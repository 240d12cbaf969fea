package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yuZuPluZ/tickets/internal/identity"
	"github.com/yuZuPluZ/tickets/internal/model"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

// OrderRepository 訂單與付款帳本。Orders are mutated only by the request
// that created them, and that owner publishes every mutation through
// Update so the table lock covers writes as well as the read-side clones.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	// FindByID 回傳訂單快照（副本）
	FindByID(ctx context.Context, id int) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID int) ([]*model.Order, error)
	// Update applies a mutation to the stored order under the table lock.
	Update(ctx context.Context, id int, mutate func(*model.Order) error) error
	RecordPayment(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID int) ([]*model.Payment, error)
}

type OrderRepositoryImpl struct {
	mu       sync.RWMutex
	registry *identity.Registry
	orders   map[int]*model.Order
	payments map[int][]*model.Payment // order id → payment attempts, in order
}

func NewOrderRepository(registry *identity.Registry) OrderRepository {
	return &OrderRepositoryImpl{
		registry: registry,
		orders:   make(map[int]*model.Order),
		payments: make(map[int][]*model.Payment),
	}
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.registry.Next(identity.KindOrder)
	if order.RequestID == uuid.Nil {
		order.RequestID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	r.orders[order.ID] = order

	return order, nil
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (r *OrderRepositoryImpl) ListByBuyer(ctx context.Context, buyerID int) ([]*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*model.Order, 0)
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (r *OrderRepositoryImpl) Update(ctx context.Context, id int, mutate func(*model.Order) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperrors.ErrOrderNotFound
	}
	return mutate(order)
}

// copyOrder snapshots the order fields and the ticket list. The ticket
// pointers stay shared: their mutable fields belong to the inventory
// manager's zone locks, readers here only touch the immutable ids.
func copyOrder(o *model.Order) *model.Order {
	clone := *o
	clone.Tickets = append([]*model.Ticket(nil), o.Tickets...)
	return &clone
}

func (r *OrderRepositoryImpl) RecordPayment(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[payment.OrderID]; !ok {
		return nil, apperrors.ErrOrderNotFound
	}

	payment.ID = r.registry.Next(identity.KindPayment)
	if payment.PaymentRef == uuid.Nil {
		payment.PaymentRef = uuid.New()
	}
	payment.CreatedAt = time.Now().UTC()
	r.payments[payment.OrderID] = append(r.payments[payment.OrderID], payment)

	return payment, nil
}

func (r *OrderRepositoryImpl) ListPaymentsByOrder(ctx context.Context, orderID int) ([]*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.orders[orderID]; !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return append([]*model.Payment(nil), r.payments[orderID]...), nil
}
