package repository

import (
	"context"
	"sync"
)

// TicketBookRepository 使用者購票索引：append-only，僅供「我的票券」查詢。
// Ticket ownership truth lives on the tickets themselves.
type TicketBookRepository interface {
	Append(ctx context.Context, userID int, ticketIDs []int) error
	ListByUser(ctx context.Context, userID int) ([]int, error)
}

type TicketBookRepositoryImpl struct {
	mu    sync.RWMutex
	books map[int][]int
}

func NewTicketBookRepository() TicketBookRepository {
	return &TicketBookRepositoryImpl{
		books: make(map[int][]int),
	}
}

func (r *TicketBookRepositoryImpl) Append(ctx context.Context, userID int, ticketIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.books[userID] = append(r.books[userID], ticketIDs...)
	return nil
}

func (r *TicketBookRepositoryImpl) ListByUser(ctx context.Context, userID int) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]int(nil), r.books[userID]...), nil
}
