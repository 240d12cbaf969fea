// Package inventory is the allocation engine: every ticket status change in
// the system happens inside a per-zone critical section owned by this
// package. Reservations against different zones never contend.
package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/yuZuPluZ/tickets/internal/model"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

type Manager interface {
	// Register 註冊分區（分區建立時呼叫一次）
	Register(zone *model.Zone)
	// Reserve 保留 quantity 張票：all-or-nothing，單一臨界區內完成
	Reserve(ctx context.Context, zoneID int, quantity int, buyerID int) ([]*model.Ticket, error)
	// Release 將已售出的票釋放回可售狀態（付款失敗、跨區回滾用）。
	// 已不是售出狀態的票（例如結算前已核准退票）會被跳過。
	Release(ctx context.Context, tickets []*model.Ticket) error
	// MarkRefunded 售出 → 已退票，退票後不再回到可售池
	MarkRefunded(ctx context.Context, ticketID int) error
	// AvailableCount 可售數量快照，僅供展示
	AvailableCount(ctx context.Context, zoneID int) (int, error)
	// TicketInfo returns a consistent copy of the ticket and its zone.
	TicketInfo(ctx context.Context, ticketID int) (model.Ticket, *model.Zone, error)
}

type zoneState struct {
	mu   sync.Mutex
	zone *model.Zone
}

type ManagerImpl struct {
	mu      sync.RWMutex
	zones   map[int]*zoneState
	tickets map[int]*zoneState // ticket id → owning zone
}

func NewManager() Manager {
	return &ManagerImpl{
		zones:   make(map[int]*zoneState),
		tickets: make(map[int]*zoneState),
	}
}

func (m *ManagerImpl) Register(zone *model.Zone) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := &zoneState{zone: zone}
	m.zones[zone.ID] = state
	for _, t := range zone.Tickets {
		m.tickets[t.ID] = state
	}
}

func (m *ManagerImpl) zoneState(zoneID int) (*zoneState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.zones[zoneID]
	if !ok {
		return nil, apperrors.ErrZoneNotFound
	}
	return state, nil
}

func (m *ManagerImpl) ticketState(ticketID int) (*zoneState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.tickets[ticketID]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	return state, nil
}

// Reserve selects the first quantity available tickets in ticket-id order
// and marks them sold, all inside the zone's critical section. If fewer
// than quantity are available the whole request fails and zero tickets are
// claimed.
func (m *ManagerImpl) Reserve(ctx context.Context, zoneID int, quantity int, buyerID int) ([]*model.Ticket, error) {
	if quantity < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	state, err := m.zoneState(zoneID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	selected := make([]*model.Ticket, 0, quantity)
	for _, t := range state.zone.Tickets {
		if t.Status == model.TicketStatusAvailable {
			selected = append(selected, t)
			if len(selected) == quantity {
				break
			}
		}
	}

	if len(selected) < quantity {
		return nil, apperrors.ErrInsufficientInventory
	}

	for _, t := range selected {
		transition(t, model.TicketStatusSold)
		t.BuyerID = buyerID
	}

	return selected, nil
}

func (m *ManagerImpl) Release(ctx context.Context, tickets []*model.Ticket) error {
	// Group by zone first so each zone's lock is taken once.
	byZone := make(map[*zoneState][]*model.Ticket)
	for _, t := range tickets {
		state, err := m.ticketState(t.ID)
		if err != nil {
			return err
		}
		byZone[state] = append(byZone[state], t)
	}

	for state, zoneTickets := range byZone {
		state.mu.Lock()
		for _, t := range zoneTickets {
			// A ticket can legitimately leave sold before the rollback
			// reaches it: a refund approved against a still-pending order
			// already moved it to refunded. That ticket stays where the
			// refund put it.
			if t.Status != model.TicketStatusSold {
				continue
			}
			transition(t, model.TicketStatusAvailable)
			t.BuyerID = 0
		}
		state.mu.Unlock()
	}

	return nil
}

func (m *ManagerImpl) MarkRefunded(ctx context.Context, ticketID int) error {
	state, err := m.ticketState(ticketID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	ticket := state.findTicket(ticketID)
	if ticket.Status != model.TicketStatusSold {
		return apperrors.ErrRefundNotPending
	}
	transition(ticket, model.TicketStatusRefunded)
	return nil
}

func (m *ManagerImpl) AvailableCount(ctx context.Context, zoneID int) (int, error) {
	state, err := m.zoneState(zoneID)
	if err != nil {
		return 0, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	count := 0
	for _, t := range state.zone.Tickets {
		if t.Status == model.TicketStatusAvailable {
			count++
		}
	}
	return count, nil
}

func (m *ManagerImpl) TicketInfo(ctx context.Context, ticketID int) (model.Ticket, *model.Zone, error) {
	state, err := m.ticketState(ticketID)
	if err != nil {
		return model.Ticket{}, nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	ticket := state.findTicket(ticketID)
	return *ticket, state.zone, nil
}

// findTicket must be called with the zone lock held. A registered ticket id
// missing from its own zone's pool is a programming error, not a caller
// failure.
func (s *zoneState) findTicket(ticketID int) *model.Ticket {
	for _, t := range s.zone.Tickets {
		if t.ID == ticketID {
			return t
		}
	}
	panic(fmt.Sprintf("inventory: ticket %d not in zone %d pool", ticketID, s.zone.ID))
}

// transition applies a validated status change. Callers hold the zone lock;
// an invalid transition here means a broken state machine, so it panics
// rather than surfacing as a user error.
func transition(t *model.Ticket, target model.TicketStatus) {
	if !t.Status.CanTransitionTo(target) {
		panic(fmt.Sprintf("inventory: invalid ticket transition %s -> %s (ticket %d)", t.Status, target, t.ID))
	}
	t.Status = target
}
