package queue

import (
	"context"
	"errors"

	"github.com/yuZuPluZ/tickets/internal/model"
)

// ErrQueueFull 隊列已滿：稽核事件採 best-effort，呼叫端自行決定是否丟棄
var ErrQueueFull = errors.New("sale event queue full")

type Delivery struct {
	Data *model.SaleEvent
	Ack  func()
	Nack func(requeue bool)
}

// SaleEventQueue 銷售事件隊列。用 Go channel 模擬 MQ；稽核 worker 訂閱。
type SaleEventQueue interface {
	Publish(ctx context.Context, event *model.SaleEvent) error
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type SaleEventQueueImpl struct {
	ch chan *model.SaleEvent
}

func NewSaleEventQueue(bufferSize int) SaleEventQueue {
	return &SaleEventQueueImpl{
		ch: make(chan *model.SaleEvent, bufferSize),
	}
}

// Publish never blocks the caller: a full buffer rejects the event instead
// of stalling a purchase on the audit path.
func (q *SaleEventQueueImpl) Publish(ctx context.Context, event *model.SaleEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *SaleEventQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				delivery := Delivery{
					Data: event,
					Ack:  func() { /* in-memory queue, nothing to confirm */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event
						}
					},
				}
				select {
				case <-ctx.Done():
					return
				case out <- delivery:
				}
			}
		}
	}()

	return out, nil
}
