package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleEventType 銷售事件類型
type SaleEventType string

const (
	SaleEventTicketsSold    SaleEventType = "tickets_sold"
	SaleEventOrderCompleted SaleEventType = "order_completed"
	SaleEventOrderCanceled  SaleEventType = "order_canceled"
	SaleEventTicketRefunded SaleEventType = "ticket_refunded"
)

// SaleEvent 銷售事件，發佈到稽核隊列供 worker 記錄
type SaleEvent struct {
	Type       SaleEventType   `json:"type"`
	OrderID    int             `json:"order_id,omitempty"`
	EventID    int             `json:"event_id,omitempty"`
	ZoneType   string          `json:"zone_type,omitempty"`
	BuyerID    int             `json:"buyer_id,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
