// Package tickets owns the ticket lifecycle: creation, filtered
// listing, status transitions, assignment, comments and the
// append-only activity log that records all of it.
package tickets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmaportal/ticketd/internal/domain"
	"go.uber.org/zap"
)

const (
	ticketIDPrefix = "TKT-"

	// FilterAll disables filtering on a dimension.
	FilterAll = "All"
)

// Filter narrows List results. Empty or "All" on a dimension means no
// filtering on it.
type Filter struct {
	Status   string
	Priority string
}

type CreateInput struct {
	Title       string
	Description string
	Category    domain.Category
	Type        domain.TicketType
	Priority    domain.Priority
}

// Service is the single writer of the ticket collection. Everything
// the portal does to a ticket goes through here so that every mutation
// is validated, logged to the activity trail, and persisted atomically
// by the repository underneath.
type Service struct {
	tickets domain.TicketRepository
	users   domain.UserRepository
	logger  *zap.SugaredLogger
	now     func() time.Time

	// seq is the next candidate ticket number. Loaded lazily from the
	// collection, then monotonic; every candidate is still checked
	// against the collection before use.
	seqMu sync.Mutex
	seq   int
}

func NewService(tickets domain.TicketRepository, users domain.UserRepository, logger *zap.SugaredLogger) *Service {
	return &Service{
		tickets: tickets,
		users:   users,
		logger:  logger,
		// UTC with the monotonic reading stripped, so tickets compare
		// equal after a JSON round trip through the store.
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*domain.Ticket, error) {
	if err := validateCreate(in, actorID); err != nil {
		return nil, err
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Type:        in.Type,
		Priority:    in.Priority,
		Status:      domain.StatusOpen,
		CreatedAt:   now,
		CreatedBy:   actorID,
		ActivityLog: []domain.ActivityEntry{
			domain.NewTicketCreatedEntry(actorID, now),
		},
	}

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Infow("ticket created", "ticket_id", ticket.ID, "actor", actorID, "priority", ticket.Priority)
	return ticket, nil
}

func validateCreate(in CreateInput, actorID string) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	case actorID == "":
		return fmt.Errorf("%w: creator is required", domain.ErrInvalidInput)
	case !in.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, in.Category)
	case !in.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", domain.ErrInvalidInput, in.Type)
	case !in.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, in.Priority)
	}
	return nil
}

// nextID hands out TKT-#### identifiers from a monotonic sequence
// seeded off the highest number already in the collection. Candidates
// are verified against the collection, so an ID is never reused even
// if the sequence and the stored tickets disagree.
func (s *Service) nextID(ctx context.Context) (string, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	if s.seq == 0 {
		all, err := s.tickets.All(ctx)
		if err != nil {
			return "", err
		}
		s.seq = 1
		for _, t := range all {
			if n, ok := ticketNumber(t.ID); ok && n >= s.seq {
				s.seq = n + 1
			}
		}
	}

	for {
		id := fmt.Sprintf("%s%04d", ticketIDPrefix, s.seq)
		s.seq++

		exists, err := s.tickets.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}

func ticketNumber(id string) (int, bool) {
	if !strings.HasPrefix(id, ticketIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, ticketIDPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// List returns the tickets matching the filter, newest first by
// creation time regardless of storage order.
func (s *Service) List(ctx context.Context, filter Filter) ([]domain.Ticket, error) {
	all, err := s.tickets.All(ctx)
	if err != nil {
		return nil, err
	}

	filtered := all[:0]
	for _, t := range all {
		if filter.Status != "" && filter.Status != FilterAll && string(t.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && filter.Priority != FilterAll && string(t.Priority) != filter.Priority {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return filtered, nil
}

// UpdateStatus moves a ticket between the open lifecycle states.
// Setting the current status again is a successful no-op with no
// duplicate log entry. Closed is not reachable from here: closing
// requires a resolution note (Close) and leaving Closed requires an
// explicit Reopen.
func (s *Service) UpdateStatus(ctx context.Context, id string, newStatus domain.Status, actorID string) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, newStatus)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ticket.Status == newStatus {
		return ticket, nil
	}

	if newStatus == domain.StatusClosed {
		return nil, fmt.Errorf("%w: closing requires a resolution note", domain.ErrInvalidTransition)
	}
	if ticket.Status == domain.StatusClosed {
		return nil, fmt.Errorf("%w: closed tickets must be reopened explicitly", domain.ErrInvalidTransition)
	}
	if !ticket.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, ticket.Status, newStatus)
	}

	ticket.Status = newStatus
	ticket.LogActivity(domain.NewStatusChangedEntry(newStatus, actorID, s.now()))

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Infow("ticket status updated", "ticket_id", id, "status", newStatus, "actor", actorID)
	return ticket, nil
}

// Assign sets the assignee and records the change in the activity log,
// so reassignments stay auditable like every other mutation.
func (s *Service) Assign(ctx context.Context, id, assigneeID, actorID string) (*domain.Ticket, error) {
	if assigneeID == "" {
		return nil, fmt.Errorf("%w: assignee is required", domain.ErrInvalidInput)
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ticket.AssignedTo = assignee.ID
	ticket.LogActivity(domain.NewAssignedEntry(assignee.Name, actorID, s.now()))

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Infow("ticket assigned", "ticket_id", id, "assignee", assignee.ID, "actor", actorID)
	return ticket, nil
}

func (s *Service) AddComment(ctx context.Context, id, text, actorID string) (*domain.Ticket, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrInvalidInput)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ticket.LogActivity(domain.NewCommentEntry(text, actorID, s.now()))

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	return ticket, nil
}

// Close is the only path into the Closed state and always demands a
// resolution note; that policy lives here, not in any UI.
func (s *Service) Close(ctx context.Context, id, resolutionNote, actorID string) (*domain.Ticket, error) {
	if strings.TrimSpace(resolutionNote) == "" {
		return nil, fmt.Errorf("%w: resolution note is required to close", domain.ErrInvalidInput)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ticket.Status == domain.StatusClosed {
		return nil, fmt.Errorf("%w: ticket is already closed", domain.ErrInvalidTransition)
	}

	ticket.Status = domain.StatusClosed
	ticket.ResolutionNotes = strings.TrimSpace(resolutionNote)
	ticket.LogActivity(domain.NewStatusChangedEntry(domain.StatusClosed, actorID, s.now()))

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Infow("ticket closed", "ticket_id", id, "actor", actorID)
	return ticket, nil
}

// Reopen is the only path out of Closed.
func (s *Service) Reopen(ctx context.Context, id, actorID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ticket.Status != domain.StatusClosed {
		return nil, fmt.Errorf("%w: only closed tickets can be reopened", domain.ErrInvalidTransition)
	}

	ticket.Status = domain.StatusOpen
	ticket.LogActivity(domain.NewStatusChangedEntry(domain.StatusOpen, actorID, s.now()))

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Infow("ticket reopened", "ticket_id", id, "actor", actorID)
	return ticket, nil
}
