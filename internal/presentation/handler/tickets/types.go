package tickets

import (
	"time"

	"github.com/bmaportal/ticketd/internal/domain"
)

type createTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type assignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type closeRequest struct {
	ResolutionNote string `json:"resolution_note"`
}

type activityEntryResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Kind      string    `json:"type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
}

type ticketResponse struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Category        domain.Category         `json:"category"`
	Type            domain.TicketType       `json:"type"`
	Priority        domain.Priority         `json:"priority"`
	Status          domain.Status           `json:"status"`
	CreatedAt       time.Time               `json:"created_at"`
	CreatedBy       string                  `json:"created_by"`
	AssignedTo      string                  `json:"assigned_to,omitempty"`
	ResolutionNotes string                  `json:"resolution_notes,omitempty"`
	ActivityLog     []activityEntryResponse `json:"activity_log"`
}

func newTicketResponse(t *domain.Ticket) ticketResponse {
	log := make([]activityEntryResponse, 0, len(t.ActivityLog))
	for _, e := range t.ActivityLog {
		log = append(log, activityEntryResponse{
			ID:        e.ID,
			Action:    e.Action,
			Details:   e.Details,
			Kind:      string(e.Kind),
			Timestamp: e.Timestamp,
			UserID:    e.UserID,
		})
	}

	return ticketResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Category:        t.Category,
		Type:            t.Type,
		Priority:        t.Priority,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
		CreatedBy:       t.CreatedBy,
		AssignedTo:      t.AssignedTo,
		ResolutionNotes: t.ResolutionNotes,
		ActivityLog:     log,
	}
}

func newTicketListResponse(tickets []domain.Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, newTicketResponse(&tickets[i]))
	}
	return out
}
