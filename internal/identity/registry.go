// Package identity issues process-scoped unique identifiers, one monotonic
// sequence per entity kind. The registry is injected wherever entities are
// created so id assignment is observably atomic and testable without
// package-level state.
package identity

import "sync"

// Kind 實體種類
type Kind string

const (
	KindUser    Kind = "user"
	KindHall    Kind = "hall"
	KindEvent   Kind = "event"
	KindZone    Kind = "zone"
	KindTicket  Kind = "ticket"
	KindOrder   Kind = "order"
	KindPayment Kind = "payment"
	KindRefund  Kind = "refund"
)

type Registry struct {
	mu       sync.Mutex
	counters map[Kind]int
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[Kind]int),
	}
}

// Next returns the next identifier for the kind, starting at 1.
func (r *Registry) Next(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[kind]++
	return r.counters[kind]
}

// NextN reserves a contiguous block of n identifiers and returns the first.
// Used when a zone mints its whole ticket pool at once.
func (r *Registry) NextN(kind Kind, n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	first := r.counters[kind] + 1
	r.counters[kind] += n
	return first
}
