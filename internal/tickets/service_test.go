package tickets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bmaportal/ticketd/internal/domain"
	"github.com/bmaportal/ticketd/internal/infrastructure/kv"
	"github.com/bmaportal/ticketd/internal/infrastructure/repository"
)

func newTestStore(t *testing.T) *kv.Store {
	t.Helper()

	store, err := kv.Open(kv.InMemoryConfig(), zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func newTestService(t *testing.T) (*Service, *kv.Store) {
	t.Helper()

	store := newTestStore(t)
	svc := NewService(
		repository.NewTicketRepository(store),
		repository.NewUserRepository(store),
		zap.NewNop().Sugar(),
	)

	require.NoError(t, repository.NewUserRepository(store).Seed(context.Background(), []domain.User{
		{ID: "u1", Name: "Admin User", Email: "admin@bma.com", Role: domain.RoleAdmin},
		{ID: "u2", Name: "Committee Member 1", Email: "member1@bma.com", Role: domain.RoleCommitteeMember},
	}))

	return svc, store
}

// withTickingClock makes each store operation observe a strictly later
// timestamp, so ordering assertions are deterministic.
func withTickingClock(svc *Service) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
}

func validInput() CreateInput {
	return CreateInput{
		Title:       "Leaky faucet",
		Description: "Kitchen sink drips",
		Category:    domain.CategoryPlumbing,
		Type:        domain.TypeMaintenance,
		Priority:    domain.PriorityHigh,
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "TKT-0001", ticket.ID)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
	assert.Equal(t, "u1", ticket.CreatedBy)
	assert.Empty(t, ticket.AssignedTo)
	assert.False(t, ticket.CreatedAt.IsZero())

	require.Len(t, ticket.ActivityLog, 1)
	assert.Equal(t, "Created Ticket", ticket.ActivityLog[0].Action)
	assert.Equal(t, "u1", ticket.ActivityLog[0].UserID)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		actorID string
	}{
		{"missing title", func(in *CreateInput) { in.Title = "  " }, "u1"},
		{"missing description", func(in *CreateInput) { in.Description = "" }, "u1"},
		{"missing actor", func(in *CreateInput) {}, ""},
		{"unknown category", func(in *CreateInput) { in.Category = "Gardening" }, "u1"},
		{"unknown type", func(in *CreateInput) { in.Type = "Request" }, "u1"},
		{"unknown priority", func(in *CreateInput) { in.Priority = "Urgent" }, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(ctx, in, tt.actorID)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateIDsAreUnique(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 600; i++ {
		ticket, err := svc.Create(ctx, validInput(), "u1")
		require.NoError(t, err)
		require.False(t, seen[ticket.ID], "duplicate ticket id %s", ticket.ID)
		seen[ticket.ID] = true
	}
}

func TestCreateSkipsOccupiedIDs(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// A ticket that did not come from this service's sequence.
	repo := repository.NewTicketRepository(store)
	require.NoError(t, repo.Insert(ctx, &domain.Ticket{
		ID:        "TKT-0007",
		Title:     "Pre-existing",
		Status:    domain.StatusOpen,
		CreatedAt: time.Now().UTC(),
		ActivityLog: []domain.ActivityEntry{
			domain.NewTicketCreatedEntry("u1", time.Now().UTC()),
		},
	}))

	for i := 0; i < 10; i++ {
		ticket, err := svc.Create(ctx, validInput(), "u1")
		require.NoError(t, err)
		require.NotEqual(t, "TKT-0007", ticket.ID)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, ticket.ID, domain.StatusInProgress, "u2")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInProgress, updated.Status)
	require.Len(t, updated.ActivityLog, 2)
	assert.Equal(t, "Status updated to In Progress", updated.ActivityLog[0].Action)
	assert.Equal(t, "u2", updated.ActivityLog[0].UserID)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		same, err := svc.UpdateStatus(ctx, ticket.ID, domain.StatusOpen, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, same.Status)
		assert.Len(t, same.ActivityLog, 1, "no-op must not append log entries")
	}
}

func TestUpdateStatusRejectsInvalidTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	// Closing without a note via bare status update is never allowed.
	_, err = svc.UpdateStatus(ctx, ticket.ID, domain.StatusClosed, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Resolved only goes back to Open, never sideways to In Progress.
	_, err = svc.UpdateStatus(ctx, ticket.ID, domain.StatusResolved, "u1")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ticket.ID, domain.StatusInProgress, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, ticket.ID, "Reviewing", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "TKT-9999", domain.StatusInProgress, "u1")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestActivityLogOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	withTickingClock(svc)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ticket.ID, domain.StatusInProgress, "u1")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, ticket.ID, "Plumber visiting Friday", "u2")
	require.NoError(t, err)
	updated, err := svc.Assign(ctx, ticket.ID, "u2", "u1")
	require.NoError(t, err)

	require.Len(t, updated.ActivityLog, 4)
	assert.Equal(t, "Assigned to Committee Member 1", updated.ActivityLog[0].Action)
	assert.Equal(t, "Created Ticket", updated.ActivityLog[3].Action)

	for i := 0; i < len(updated.ActivityLog)-1; i++ {
		assert.True(t, updated.ActivityLog[i].Timestamp.After(updated.ActivityLog[i+1].Timestamp),
			"entry %d must be newer than entry %d", i, i+1)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	withTickingClock(svc)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	in := validInput()
	in.Priority = domain.PriorityLow
	second, err := svc.Create(ctx, in, "u1")
	require.NoError(t, err)

	third, err := svc.Create(ctx, validInput(), "u2")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, third.ID, domain.StatusInProgress, "u2")
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	unfiltered, err := svc.List(ctx, Filter{Status: FilterAll, Priority: FilterAll})
	require.NoError(t, err)
	assert.Len(t, unfiltered, 3)

	open, err := svc.List(ctx, Filter{Status: "Open"})
	require.NoError(t, err)
	require.Len(t, open, 2)
	for _, tk := range open {
		assert.Equal(t, domain.StatusOpen, tk.Status)
	}

	low, err := svc.List(ctx, Filter{Priority: "Low"})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, second.ID, low[0].ID)

	openHigh, err := svc.List(ctx, Filter{Status: "Open", Priority: "High"})
	require.NoError(t, err)
	require.Len(t, openHigh, 1)
}

func TestListSortsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	withTickingClock(svc)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		ticket, err := svc.Create(ctx, validInput(), "u1")
		require.NoError(t, err)
		ids = append(ids, ticket.ID)
	}

	listed, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 5)

	for i, tk := range listed {
		assert.Equal(t, ids[len(ids)-1-i], tk.ID)
		if i > 0 {
			assert.False(t, tk.CreatedAt.After(listed[i-1].CreatedAt))
		}
	}
}

func TestAssign(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	updated, err := svc.Assign(ctx, ticket.ID, "u2", "u1")
	require.NoError(t, err)

	assert.Equal(t, "u2", updated.AssignedTo)
	require.Len(t, updated.ActivityLog, 2)
	assert.Equal(t, "Assigned to Committee Member 1", updated.ActivityLog[0].Action)
	assert.Equal(t, "u1", updated.ActivityLog[0].UserID)
}

func TestAssignValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	_, err = svc.Assign(ctx, ticket.ID, "", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Assign(ctx, ticket.ID, "u99", "u1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAddComment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	updated, err := svc.AddComment(ctx, ticket.ID, "Plumber visiting Friday", "u2")
	require.NoError(t, err)

	require.Len(t, updated.ActivityLog, 2)
	entry := updated.ActivityLog[0]
	assert.Equal(t, "Comment Added", entry.Action)
	assert.Equal(t, "Plumber visiting Friday", entry.Details)
	assert.Equal(t, domain.ActivityComment, entry.Kind)
	assert.Equal(t, "u2", entry.UserID)
}

func TestAddCommentRejectsBlankText(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.AddComment(ctx, ticket.ID, text, "u1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestClose(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	_, err = svc.Close(ctx, ticket.ID, "", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	closed, err := svc.Close(ctx, ticket.ID, "Replaced washer", "u1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusClosed, closed.Status)
	assert.Equal(t, "Replaced washer", closed.ResolutionNotes)
	require.Len(t, closed.ActivityLog, 2)
	assert.Equal(t, "Status updated to Closed", closed.ActivityLog[0].Action)

	_, err = svc.Close(ctx, ticket.ID, "Again", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReopen(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)

	// Only closed tickets reopen.
	_, err = svc.Reopen(ctx, ticket.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Close(ctx, ticket.ID, "Replaced washer", "u1")
	require.NoError(t, err)

	// Closed only exits through here, not through UpdateStatus.
	_, err = svc.UpdateStatus(ctx, ticket.ID, domain.StatusOpen, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	reopened, err := svc.Reopen(ctx, ticket.ID, "u2")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOpen, reopened.Status)
	assert.Equal(t, "Replaced washer", reopened.ResolutionNotes, "reopening keeps the note for the audit trail")
	require.Len(t, reopened.ActivityLog, 3)
	assert.Equal(t, "Status updated to Open", reopened.ActivityLog[0].Action)
}

func TestLifecycleScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
	require.Len(t, ticket.ActivityLog, 1)

	inProgress, err := svc.UpdateStatus(ctx, ticket.ID, domain.StatusInProgress, "u1")
	require.NoError(t, err)
	require.Len(t, inProgress.ActivityLog, 2)
	assert.Equal(t, "Status updated to In Progress", inProgress.ActivityLog[0].Action)

	closed, err := svc.Close(ctx, ticket.ID, "Replaced washer", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, closed.Status)
	assert.Equal(t, "Replaced washer", closed.ResolutionNotes)
	require.Len(t, closed.ActivityLog, 3)
}

func TestRoundTripPersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	open := func() *kv.Store {
		store, err := kv.Open(kv.Config{Path: dir, SyncWrites: true}, zap.NewNop().Sugar())
		require.NoError(t, err)
		return store
	}

	store := open()
	svc := NewService(
		repository.NewTicketRepository(store),
		repository.NewUserRepository(store),
		zap.NewNop().Sugar(),
	)

	created, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// A fresh store and service over the same directory must see the
	// exact ticket the first instance returned.
	store = open()
	defer store.Close()

	svc = NewService(
		repository.NewTicketRepository(store),
		repository.NewUserRepository(store),
		zap.NewNop().Sugar(),
	)

	reloaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, reloaded)

	// The sequence resumes past the persisted tickets.
	next, err := svc.Create(ctx, validInput(), "u1")
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, next.ID)
}

func TestTicketNumberParsing(t *testing.T) {
	tests := []struct {
		id   string
		n    int
		ok   bool
		name string
	}{
		{"TKT-0001", 1, true, "padded"},
		{"TKT-1234", 1234, true, "plain"},
		{"REQ-0001", 0, false, "wrong prefix"},
		{"TKT-xyz", 0, false, "not a number"},
		{"", 0, false, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := ticketNumber(tt.id)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.n, n)
			}
		})
	}
}

func TestListDoesNotMutateCollection(t *testing.T) {
	svc, _ := newTestService(t)
	withTickingClock(svc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, validInput(), "u1")
		require.NoError(t, err)
	}

	filtered, err := svc.List(ctx, Filter{Status: "Open"})
	require.NoError(t, err)
	for i := range filtered {
		filtered[i].Title = fmt.Sprintf("mutated %d", i)
		filtered[i].Status = domain.StatusResolved
	}

	again, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, again, 3)
	for _, tk := range again {
		assert.Equal(t, "Leaky faucet", tk.Title)
		assert.Equal(t, domain.StatusOpen, tk.Status)
	}
}
