package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundStatus 退票狀態類型
type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusApproved RefundStatus = "approved"
	RefundStatusRejected RefundStatus = "rejected"
)

// IsValid 驗證狀態是否有效
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusApproved, RefundStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s RefundStatus) CanTransitionTo(target RefundStatus) bool {
	transitions := map[RefundStatus][]RefundStatus{
		RefundStatusPending:  {RefundStatusApproved, RefundStatusRejected},
		RefundStatusApproved: {},
		RefundStatusRejected: {},
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

// RefundRequest 退票申請。Amount is snapshotted from the zone price at
// request time so a later price change cannot alter what is owed.
type RefundRequest struct {
	ID        int             `json:"id"`
	TicketID  int             `json:"ticket_id"`
	ZoneID    int             `json:"zone_id"`
	BuyerID   int             `json:"buyer_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    RefundStatus    `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateRefundRequest 退票申請請求
type CreateRefundRequest struct {
	TicketID int `json:"ticket_id" binding:"required"`
	BuyerID  int `json:"buyer_id" binding:"required"`
}

// ResolveRefundRequest 核准／駁回退票請求
type ResolveRefundRequest struct {
	ApproverID int `json:"approver_id" binding:"required"`
}
