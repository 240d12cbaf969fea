package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/queue"
	"github.com/yuZuPluZ/tickets/monitoring"
	"github.com/yuZuPluZ/tickets/pkg/logger"
)

// AuditWorker 訂閱銷售事件隊列，寫稽核日誌並更新指標
type AuditWorker interface {
	Start(ctx context.Context) error
}

type AuditWorkerImpl struct {
	queue queue.SaleEventQueue
}

func NewAuditWorker(queue queue.SaleEventQueue) AuditWorker {
	return &AuditWorkerImpl{queue: queue}
}

func (w *AuditWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	log := logger.WithComponent("audit_worker")

	go func() {
		for msg := range msgs {
			w.record(log, msg.Data)
			msg.Ack()
		}
	}()
	return nil
}

func (w *AuditWorkerImpl) record(log *zap.Logger, event *model.SaleEvent) {
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.Int("order_id", event.OrderID),
		zap.Int("event_id", event.EventID),
		zap.String("zone_type", event.ZoneType),
		zap.Int("buyer_id", event.BuyerID),
		zap.Int("quantity", event.Quantity),
		zap.String("amount", event.Amount.String()),
		zap.Time("occurred_at", event.OccurredAt),
	}

	switch event.Type {
	case model.SaleEventTicketsSold:
		monitoring.RecordTicketsSold(event.EventID, event.ZoneType, event.Quantity)
		log.Info("tickets sold", fields...)
	case model.SaleEventOrderCompleted:
		monitoring.RecordOrderSettled("completed")
		log.Info("order completed", fields...)
	case model.SaleEventOrderCanceled:
		monitoring.RecordOrderSettled("canceled")
		log.Warn("order canceled", fields...)
	case model.SaleEventTicketRefunded:
		monitoring.RecordTicketsRefunded(event.EventID, event.ZoneType, event.Quantity)
		log.Info("ticket refunded", fields...)
	default:
		log.Warn("unknown sale event", fields...)
	}
}
