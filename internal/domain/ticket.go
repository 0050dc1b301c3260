package domain

import (
	"context"
	"time"
)

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// transitions holds the edges reachable through UpdateStatus. Closed is
// deliberately absent on both sides: closing requires a resolution note
// and goes through Close, leaving Closed goes through Reopen.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusResolved},
	StatusInProgress: {StatusOpen, StatusResolved},
	StatusResolved:   {StatusOpen},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Category string

const (
	CategoryPlumbing   Category = "Plumbing"
	CategoryElectrical Category = "Electrical"
	CategoryCarpentry  Category = "Carpentry"
	CategoryCleaning   Category = "Cleaning"
	CategorySecurity   Category = "Security"
	CategoryKitchen    Category = "Kitchen"
	CategoryCanteen    Category = "Canteen"
	CategoryOther      Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPlumbing, CategoryElectrical, CategoryCarpentry,
		CategoryCleaning, CategorySecurity, CategoryKitchen,
		CategoryCanteen, CategoryOther:
		return true
	}
	return false
}

type TicketType string

const (
	TypeMaintenance TicketType = "Maintenance"
	TypeComplaint   TicketType = "Complaint"
)

func (t TicketType) Valid() bool {
	return t == TypeMaintenance || t == TypeComplaint
}

// Ticket is one tracked maintenance or complaint request. CreatedAt and
// CreatedBy are fixed at creation; only Status, AssignedTo and
// ResolutionNotes mutate afterwards, and every mutation prepends an
// ActivityEntry.
type Ticket struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        Category        `json:"category"`
	Type            TicketType      `json:"type"`
	Priority        Priority        `json:"priority"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
	AssignedTo      string          `json:"assigned_to,omitempty"`
	ResolutionNotes string          `json:"resolution_notes,omitempty"`
	ActivityLog     []ActivityEntry `json:"activity_log"`
}

// LogActivity prepends an entry so ActivityLog stays newest-first.
func (t *Ticket) LogActivity(e ActivityEntry) {
	t.ActivityLog = append([]ActivityEntry{e}, t.ActivityLog...)
}

type TicketRepository interface {
	Insert(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id string) (*Ticket, error)
	Update(ctx context.Context, ticket *Ticket) error
	All(ctx context.Context) ([]Ticket, error)
	Exists(ctx context.Context, id string) (bool, error)
}
