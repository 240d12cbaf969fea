package queue

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuZuPluZ/tickets/internal/model"
)

func newEvent(eventType model.SaleEventType) *model.SaleEvent {
	return &model.SaleEvent{
		Type:       eventType,
		EventID:    1,
		ZoneType:   "VIP",
		BuyerID:    2,
		Quantity:   3,
		Amount:     decimal.NewFromInt(450),
		OccurredAt: time.Now().UTC(),
	}
}

func TestSaleEventQueue_PublishSubscribe(t *testing.T) {
	q := NewSaleEventQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Subscribe(ctx)
	require.NoError(t, err)

	published := newEvent(model.SaleEventTicketsSold)
	require.NoError(t, q.Publish(ctx, published))

	select {
	case delivery := <-deliveries:
		assert.Equal(t, published, delivery.Data)
		delivery.Ack()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestSaleEventQueue_PublishFullBuffer(t *testing.T) {
	q := NewSaleEventQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, newEvent(model.SaleEventTicketsSold)))
	require.NoError(t, q.Publish(ctx, newEvent(model.SaleEventOrderCompleted)))

	// No subscriber draining; the third publish must not block.
	err := q.Publish(ctx, newEvent(model.SaleEventOrderCanceled))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestSaleEventQueue_PublishCanceledContext(t *testing.T) {
	q := NewSaleEventQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Publish(ctx, newEvent(model.SaleEventTicketsSold))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaleEventQueue_NackRequeues(t *testing.T) {
	q := NewSaleEventQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Subscribe(ctx)
	require.NoError(t, err)

	published := newEvent(model.SaleEventTicketRefunded)
	require.NoError(t, q.Publish(ctx, published))

	first := <-deliveries
	first.Nack(true)

	select {
	case second := <-deliveries:
		assert.Equal(t, published, second.Data)
		second.Ack()
	case <-time.After(time.Second):
		t.Fatal("nacked event was not redelivered")
	}
}

func TestSaleEventQueue_SubscribeStopsOnCancel(t *testing.T) {
	q := NewSaleEventQueue(8)
	ctx, cancel := context.WithCancel(context.Background())

	deliveries, err := q.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-deliveries:
		assert.False(t, ok, "delivery channel should close after cancel")
	case <-time.After(time.Second):
		t.Fatal("delivery channel did not close")
	}
}
