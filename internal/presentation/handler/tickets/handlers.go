package tickets

import (
	"encoding/csv"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bmaportal/ticketd/internal/domain"
	"github.com/bmaportal/ticketd/internal/infrastructure/json"
	"github.com/bmaportal/ticketd/internal/infrastructure/validate"
	"github.com/bmaportal/ticketd/internal/presentation/utils"
	ticketstore "github.com/bmaportal/ticketd/internal/tickets"
)

type Handler struct {
	store *ticketstore.Service
}

func NewHandler(store *ticketstore.Service) *Handler {
	return &Handler{store: store}
}

var (
	validateTitle       = validate.Field("title", validate.Required(), validate.MaxLength(200))
	validateDescription = validate.Field("description", validate.Required(), validate.MaxLength(5000))
)

func actorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	profile, ok := utils.ProfileFromContext(r.Context())
	if !ok {
		json.WriteUnauthorizedError(w, "Not logged in")
		return "", false
	}
	return profile.ID, true
}

// writeDomainError maps store errors onto HTTP statuses. Unrecognized
// errors are 500s and get logged there.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		json.WriteNotFoundError(w, "Ticket not found")
	case errors.Is(err, domain.ErrUserNotFound):
		json.WriteNotFoundError(w, "User not found")
	case errors.Is(err, domain.ErrInvalidInput):
		json.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		json.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrTicketExists):
		json.WriteError(w, http.StatusConflict, err.Error())
	default:
		json.WriteInternalError(w, err)
	}
}

func (h *Handler) CreateTicketHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req createTicketRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := validateTitle(req.Title); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validateDescription(req.Description); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ticket, err := h.store.Create(r.Context(), ticketstore.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Type:        domain.TicketType(req.Type),
		Priority:    domain.Priority(req.Priority),
	}, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusCreated, newTicketResponse(ticket))
}

func (h *Handler) ListTicketsHandler(w http.ResponseWriter, r *http.Request) {
	filter := ticketstore.Filter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
	}

	tickets, err := h.store.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, newTicketListResponse(tickets))
}

func (h *Handler) GetTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.store.GetByID(r.Context(), chi.URLParam(r, "ticketId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, newTicketResponse(ticket))
}

func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ticket, err := h.store.UpdateStatus(r.Context(), chi.URLParam(r, "ticketId"), domain.Status(req.Status), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, newTicketResponse(ticket))
}

func (h *Handler) AssignTicketHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ticket, err := h.store.Assign(r.Context(), chi.URLParam(r, "ticketId"), req.AssigneeID, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, newTicketResponse(ticket))
}

func (h *Handler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ticket, err := h.store.AddComment(r.Context(), chi.URLParam(r, "ticketId"), req.Text, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusCreated, newTicketResponse(ticket))
}

func (h *Handler) CloseTicketHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req closeRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ticket, err := h.store.Close(r.Context(), chi.URLParam(r, "ticketId"), req.ResolutionNote, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, newTicketResponse(ticket))
}

func (h *Handler) ReopenTicketHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	ticket, err := h.store.Reopen(r.Context(), chi.URLParam(r, "ticketId"), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, newTicketResponse(ticket))
}

// ExportCSVHandler streams the (optionally filtered) collection as a
// CSV, one row per ticket, activity log omitted.
func (h *Handler) ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	filter := ticketstore.Filter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
	}

	tickets, err := h.store.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tickets_export.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"ID", "Title", "Category", "Type", "Priority", "Status", "Created At", "Created By", "Assigned To", "Resolution Notes"})
	for _, t := range tickets {
		_ = cw.Write([]string{
			t.ID,
			t.Title,
			string(t.Category),
			string(t.Type),
			string(t.Priority),
			string(t.Status),
			t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			t.CreatedBy,
			t.AssignedTo,
			t.ResolutionNotes,
		})
	}
	cw.Flush()
}
