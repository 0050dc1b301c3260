package repository

import (
	"context"
	"sync"

	"github.com/bmaportal/ticketd/internal/domain"
	"github.com/bmaportal/ticketd/internal/infrastructure/kv"
)

// ticketRepository keeps the whole ticket collection under one kv key
// and rewrites it per mutation. That is deliberate: the portal is a
// single-writer system, and a full-collection rewrite inside one kv
// transaction gives all-or-nothing persistence for free. The mutex
// serializes the read-modify-write sequence so sequential callers can
// never observe a half-applied mutation.
type ticketRepository struct {
	store *kv.Store
	mu    sync.Mutex
}

func NewTicketRepository(store *kv.Store) domain.TicketRepository {
	return &ticketRepository{store: store}
}

func (r *ticketRepository) load(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if _, err := r.store.Get(ctx, kv.KeyTickets, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) save(ctx context.Context, tickets []domain.Ticket) error {
	return r.store.Set(ctx, kv.KeyTickets, tickets)
}

// Insert persists a new ticket at the head of the collection, keeping
// the stored order newest-first.
func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	if ticket == nil || ticket.ID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return err
	}

	for _, t := range tickets {
		if t.ID == ticket.ID {
			return domain.ErrTicketExists
		}
	}

	tickets = append([]domain.Ticket{*ticket}, tickets...)
	return r.save(ctx, tickets)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tickets {
		if tickets[i].ID == id {
			t := tickets[i]
			return &t, nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if ticket == nil || ticket.ID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range tickets {
		if tickets[i].ID == ticket.ID {
			tickets[i] = *ticket
			return r.save(ctx, tickets)
		}
	}
	return domain.ErrTicketNotFound
}

// All returns a copy of the collection; callers may reorder or filter
// it freely without touching persisted state.
func (r *ticketRepository) All(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Ticket, len(tickets))
	copy(out, tickets)
	return out, nil
}

func (r *ticketRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	for _, t := range tickets {
		if t.ID == id {
			return true, nil
		}
	}
	return false, nil
}
