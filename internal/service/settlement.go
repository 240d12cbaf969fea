package service

import (
	"context"

	"github.com/yuZuPluZ/tickets/internal/model"
)

// PaymentSettler resolves a payment's outcome. Settlement is an in-process
// state transition; a declined settlement returns ErrPaymentDeclined and
// leaves the payment failed. Plugging in a real gateway later only means
// another implementation of this interface, with a bounded timeout mapped
// to the same error.
type PaymentSettler interface {
	Settle(ctx context.Context, payment *model.Payment) error
}

// AutoSettler 本地結算：一律成功
type AutoSettler struct{}

func NewAutoSettler() PaymentSettler {
	return &AutoSettler{}
}

func (s *AutoSettler) Settle(ctx context.Context, payment *model.Payment) error {
	payment.Status = model.PaymentStatusCompleted
	return nil
}
