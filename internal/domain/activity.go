package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ActivityKind string

const (
	ActivityComment ActivityKind = "comment"
)

// ActivityEntry is one immutable audit record on a ticket. Entries are
// only ever prepended to a ticket's log, never edited or removed.
type ActivityEntry struct {
	ID        string       `json:"id"`
	Action    string       `json:"action"`
	Details   string       `json:"details,omitempty"`
	Kind      ActivityKind `json:"type,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	UserID    string       `json:"user_id"`
}

func NewTicketCreatedEntry(actorID string, at time.Time) ActivityEntry {
	return ActivityEntry{
		ID:        uuid.NewString(),
		Action:    "Created Ticket",
		Timestamp: at,
		UserID:    actorID,
	}
}

func NewStatusChangedEntry(newStatus Status, actorID string, at time.Time) ActivityEntry {
	return ActivityEntry{
		ID:        uuid.NewString(),
		Action:    fmt.Sprintf("Status updated to %s", newStatus),
		Timestamp: at,
		UserID:    actorID,
	}
}

func NewAssignedEntry(assignee string, actorID string, at time.Time) ActivityEntry {
	return ActivityEntry{
		ID:        uuid.NewString(),
		Action:    fmt.Sprintf("Assigned to %s", assignee),
		Timestamp: at,
		UserID:    actorID,
	}
}

func NewCommentEntry(text string, actorID string, at time.Time) ActivityEntry {
	return ActivityEntry{
		ID:        uuid.NewString(),
		Action:    "Comment Added",
		Details:   text,
		Kind:      ActivityComment,
		Timestamp: at,
		UserID:    actorID,
	}
}
