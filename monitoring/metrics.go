package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Tickets sold per event and zone",
		},
		[]string{"event_id", "zone_type"},
	)

	ticketsRefunded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_refunded_total",
			Help: "Tickets refunded per event and zone",
		},
		[]string{"event_id", "zone_type"},
	)

	ordersSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_settled_total",
			Help: "Orders by settlement outcome",
		},
		[]string{"outcome"},
	)

	reservationConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_conflicts_total",
			Help: "Reservations rejected for insufficient inventory",
		},
		[]string{"event_id", "zone_type"},
	)

	reservationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reservation_duration_seconds",
			Help:    "Time spent inside the zone reservation critical section",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
		[]string{"zone_type"},
	)
)

func RecordTicketsSold(eventID int, zoneType string, quantity int) {
	ticketsSold.WithLabelValues(strconv.Itoa(eventID), zoneType).Add(float64(quantity))
}

func RecordTicketsRefunded(eventID int, zoneType string, quantity int) {
	ticketsRefunded.WithLabelValues(strconv.Itoa(eventID), zoneType).Add(float64(quantity))
}

func RecordOrderSettled(outcome string) {
	ordersSettled.WithLabelValues(outcome).Inc()
}

func RecordReservationConflict(eventID int, zoneType string) {
	reservationConflicts.WithLabelValues(strconv.Itoa(eventID), zoneType).Inc()
}

func ObserveReservationDuration(zoneType string, d time.Duration) {
	reservationDuration.WithLabelValues(zoneType).Observe(d.Seconds())
}
