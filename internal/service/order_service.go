package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yuZuPluZ/tickets/internal/inventory"
	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/queue"
	"github.com/yuZuPluZ/tickets/internal/repository"
	"github.com/yuZuPluZ/tickets/monitoring"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

// OrderService 訂單帳本加上對外的購票門面
type OrderService interface {
	// Purchase 一次購票：跨分區保留 → 掛票 → 結算，全有或全無
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.Order, error)
	CreateOrder(ctx context.Context, buyerID int) (*model.Order, error)
	// AttachTickets 掛票到 pending 訂單，總價累加各票的分區票價
	AttachTickets(ctx context.Context, order *model.Order, tickets []*model.Ticket) error
	// Complete 結算：產生付款、跑結算；失敗時票券回池、訂單取消
	Complete(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id int) (*model.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID int) ([]*model.Order, error)
}

type OrderServiceImpl struct {
	orders    repository.OrderRepository
	events    repository.EventRepository
	users     repository.UserRepository
	book      repository.TicketBookRepository
	inventory inventory.Manager
	settler   PaymentSettler
	queue     queue.SaleEventQueue
	log       *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	events repository.EventRepository,
	users repository.UserRepository,
	book repository.TicketBookRepository,
	inv inventory.Manager,
	settler PaymentSettler,
	eventQueue queue.SaleEventQueue,
	log *zap.Logger,
) OrderService {
	return &OrderServiceImpl{
		orders:    orders,
		events:    events,
		users:     users,
		book:      book,
		inventory: inv,
		settler:   settler,
		queue:     eventQueue,
		log:       log,
	}
}

func (s *OrderServiceImpl) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.Order, error) {
	buyer, err := s.users.FindByID(ctx, req.BuyerID)
	if err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if len(req.Zones) == 0 {
		return nil, apperrors.ErrInvalidInput
	}
	for _, quantity := range req.Zones {
		if quantity < 1 {
			return nil, apperrors.ErrInvalidInput
		}
	}

	// Zones are visited in sorted order so two competing multi-zone
	// purchases contend in the same sequence.
	zoneTypes := make([]string, 0, len(req.Zones))
	for zoneType := range req.Zones {
		zoneTypes = append(zoneTypes, zoneType)
	}
	sort.Strings(zoneTypes)

	reserved := make([]*model.Ticket, 0)
	for _, zoneType := range zoneTypes {
		zone, ok := event.Zone(zoneType)
		if !ok {
			s.rollback(ctx, reserved)
			return nil, apperrors.ErrZoneNotFound
		}

		start := time.Now()
		tickets, err := s.inventory.Reserve(ctx, zone.ID, req.Zones[zoneType], buyer.ID)
		monitoring.ObserveReservationDuration(zone.Type, time.Since(start))
		if err != nil {
			if errors.Is(err, apperrors.ErrInsufficientInventory) {
				monitoring.RecordReservationConflict(event.ID, zone.Type)
			}
			// Abort the whole purchase: nothing stays sold.
			s.rollback(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, tickets...)
	}

	order, err := s.CreateOrder(ctx, buyer.ID)
	if err != nil {
		s.rollback(ctx, reserved)
		return nil, err
	}

	if err := s.AttachTickets(ctx, order, reserved); err != nil {
		s.rollback(ctx, reserved)
		return nil, err
	}

	if err := s.Complete(ctx, order); err != nil {
		// Complete already released the tickets and canceled the order.
		return nil, err
	}

	return order, nil
}

func (s *OrderServiceImpl) CreateOrder(ctx context.Context, buyerID int) (*model.Order, error) {
	if _, err := s.users.FindByID(ctx, buyerID); err != nil {
		return nil, err
	}

	order := &model.Order{
		BuyerID:    buyerID,
		Tickets:    make([]*model.Ticket, 0),
		TotalPrice: decimal.Zero,
		Status:     model.OrderStatusPending,
	}
	return s.orders.Create(ctx, order)
}

func (s *OrderServiceImpl) AttachTickets(ctx context.Context, order *model.Order, tickets []*model.Ticket) error {
	if order.Status != model.OrderStatusPending {
		return apperrors.ErrOrderNotPending
	}

	// Prices are resolved before taking the ledger lock.
	total := decimal.Zero
	for _, ticket := range tickets {
		_, zone, err := s.inventory.TicketInfo(ctx, ticket.ID)
		if err != nil {
			return err
		}
		total = total.Add(zone.Price)
	}

	return s.orders.Update(ctx, order.ID, func(o *model.Order) error {
		if o.Status != model.OrderStatusPending {
			return apperrors.ErrOrderNotPending
		}
		o.Tickets = append(o.Tickets, tickets...)
		o.TotalPrice = o.TotalPrice.Add(total)
		return nil
	})
}

func (s *OrderServiceImpl) Complete(ctx context.Context, order *model.Order) error {
	if order.Status != model.OrderStatusPending {
		return apperrors.ErrOrderNotPending
	}
	if len(order.Tickets) == 0 {
		return apperrors.ErrEmptyOrder
	}

	payment := &model.Payment{
		OrderID: order.ID,
		Amount:  order.TotalPrice,
		Status:  model.PaymentStatusPending,
	}
	if _, err := s.orders.RecordPayment(ctx, payment); err != nil {
		return err
	}

	if err := s.settler.Settle(ctx, payment); err != nil {
		payment.Status = model.PaymentStatusFailed
		// Declined payment must not leave zombie-sold tickets: release
		// the pool and cancel the order.
		if relErr := s.inventory.Release(ctx, order.Tickets); relErr != nil {
			return relErr
		}
		if upErr := s.setStatus(ctx, order, model.OrderStatusCanceled); upErr != nil {
			return upErr
		}
		s.publish(ctx, &model.SaleEvent{
			Type:       model.SaleEventOrderCanceled,
			OrderID:    order.ID,
			BuyerID:    order.BuyerID,
			Quantity:   len(order.Tickets),
			Amount:     order.TotalPrice,
			OccurredAt: time.Now().UTC(),
		})
		return apperrors.ErrPaymentDeclined
	}

	if err := s.setStatus(ctx, order, model.OrderStatusCompleted); err != nil {
		return err
	}

	ticketIDs := make([]int, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		ticketIDs = append(ticketIDs, t.ID)
	}
	if err := s.book.Append(ctx, order.BuyerID, ticketIDs); err != nil {
		return err
	}

	s.publishSold(ctx, order)
	s.publish(ctx, &model.SaleEvent{
		Type:       model.SaleEventOrderCompleted,
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		Quantity:   len(order.Tickets),
		Amount:     order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

func (s *OrderServiceImpl) GetOrderByID(ctx context.Context, id int) (*model.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderServiceImpl) ListOrdersByBuyer(ctx context.Context, buyerID int) ([]*model.Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID)
}

// setStatus publishes the transition through the repository so the write
// happens under the table lock. Create hands the owner the stored order,
// so the owner observes the new status on its own handle.
func (s *OrderServiceImpl) setStatus(ctx context.Context, order *model.Order, status model.OrderStatus) error {
	return s.orders.Update(ctx, order.ID, func(o *model.Order) error {
		o.Status = status
		return nil
	})
}

func (s *OrderServiceImpl) rollback(ctx context.Context, reserved []*model.Ticket) {
	if len(reserved) == 0 {
		return
	}
	// Release must run even if the request context is already gone.
	if err := s.inventory.Release(context.WithoutCancel(ctx), reserved); err != nil {
		s.log.Error("failed to release reserved tickets", zap.Error(err), zap.Int("count", len(reserved)))
	}
}

// publishSold emits one sold event per zone of the order.
func (s *OrderServiceImpl) publishSold(ctx context.Context, order *model.Order) {
	type zoneCount struct {
		zone  *model.Zone
		count int
	}
	byZone := make(map[int]*zoneCount)
	for _, ticket := range order.Tickets {
		if zc, ok := byZone[ticket.ZoneID]; ok {
			zc.count++
			continue
		}
		_, zone, err := s.inventory.TicketInfo(ctx, ticket.ID)
		if err != nil {
			s.log.Error("failed to resolve ticket zone", zap.Error(err), zap.Int("ticket_id", ticket.ID))
			continue
		}
		byZone[ticket.ZoneID] = &zoneCount{zone: zone, count: 1}
	}

	for _, zc := range byZone {
		s.publish(ctx, &model.SaleEvent{
			Type:       model.SaleEventTicketsSold,
			OrderID:    order.ID,
			EventID:    zc.zone.EventID,
			ZoneType:   zc.zone.Type,
			BuyerID:    order.BuyerID,
			Quantity:   zc.count,
			Amount:     zc.zone.Price.Mul(decimal.NewFromInt(int64(zc.count))),
			OccurredAt: time.Now().UTC(),
		})
	}
}

// publish is best-effort: a full audit queue never fails the purchase.
func (s *OrderServiceImpl) publish(ctx context.Context, event *model.SaleEvent) {
	if err := s.queue.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log.Warn("failed to publish sale event", zap.Error(err), zap.String("type", string(event.Type)))
	}
}
