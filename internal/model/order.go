package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusCompleted, OrderStatusCanceled},
		OrderStatusCompleted: {},
		OrderStatusCanceled:  {},
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

// Order 訂單模型。An order is only ever touched by the request that
// created it, so it carries no lock of its own.
type Order struct {
	ID         int             `json:"id"`
	RequestID  uuid.UUID       `json:"request_id"`
	BuyerID    int             `json:"buyer_id"`
	Tickets    []*Ticket       `json:"tickets"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PaymentStatus 付款狀態類型
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsValid 驗證狀態是否有效
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment 付款紀錄，每次嘗試完成訂單會產生一筆
type Payment struct {
	ID         int             `json:"id"`
	PaymentRef uuid.UUID       `json:"payment_ref"`
	OrderID    int             `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     PaymentStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PurchaseRequest 購票請求：一張訂單可跨多個分區
type PurchaseRequest struct {
	BuyerID int            `json:"buyer_id" binding:"required"`
	EventID int            `json:"event_id" binding:"required"`
	Zones   map[string]int `json:"zones" binding:"required"`
}

// OrderResponse 訂單回應
type OrderResponse struct {
	ID         int             `json:"id"`
	RequestID  string          `json:"request_id"`
	BuyerID    int             `json:"buyer_id"`
	TicketIDs  []int           `json:"ticket_ids"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  string          `json:"created_at"`
}
