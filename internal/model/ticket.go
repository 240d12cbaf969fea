package model

import "github.com/shopspring/decimal"

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "available"
	TicketStatusSold      TicketStatus = "sold"
	TicketStatusRefunded  TicketStatus = "refunded"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusAvailable, TicketStatusSold, TicketStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusAvailable: {TicketStatusSold},
		// sold → available is the rollback path when a payment declines.
		TicketStatusSold: {TicketStatusAvailable, TicketStatusRefunded},
		TicketStatusRefunded:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Ticket 票券。座位池在分區建立時一次鑄造，之後只有狀態會變動。
//
// Status and BuyerID are only ever written inside the inventory manager's
// per-zone critical section.
type Ticket struct {
	ID      int          `json:"id"`
	ZoneID  int          `json:"zone_id"`
	EventID int          `json:"event_id"`
	Status  TicketStatus `json:"status"`
	BuyerID int          `json:"buyer_id,omitempty"`
}

// TicketResponse 票券回應
type TicketResponse struct {
	ID       int             `json:"id"`
	ZoneID   int             `json:"zone_id"`
	ZoneType string          `json:"zone_type"`
	EventID  int             `json:"event_id"`
	Price    decimal.Decimal `json:"price"`
	Status   TicketStatus    `json:"status"`
}

// Zone 分區：固定容量、固定票價，持有等量的票券池
type Zone struct {
	ID       int             `json:"id"`
	Type     string          `json:"type"`
	EventID  int             `json:"event_id"`
	Capacity int             `json:"capacity"`
	Price    decimal.Decimal `json:"price"`

	// Tickets is ordered by ticket id ascending; reservation walks it
	// front to back so allocation order is deterministic.
	Tickets []*Ticket `json:"-"`
}
