package auth

import (
	"errors"
	"net/http"

	authservice "github.com/bmaportal/ticketd/internal/auth"
	"github.com/bmaportal/ticketd/internal/domain"
	"github.com/bmaportal/ticketd/internal/infrastructure/json"
	"github.com/bmaportal/ticketd/internal/infrastructure/validate"
	"github.com/bmaportal/ticketd/internal/presentation/utils"
)

type Handler struct {
	auth *authservice.Service
}

func NewHandler(auth *authservice.Service) *Handler {
	return &Handler{auth: auth}
}

var validateEmail = validate.Field("email", validate.Required(), validate.Email())

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := validateEmail(req.Email); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	profile, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			json.WriteUnauthorizedError(w, "Invalid email or password")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	utils.SetSessionCookie(w, profile)
	json.Write(w, http.StatusOK, newProfileResponse(profile))
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		json.WriteInternalError(w, err)
		return
	}

	utils.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// MeHandler restores the session: the cookie wins, the persisted
// session is the fallback after e.g. a cleared cookie jar on the same
// device.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	if profile, err := utils.ProfileFromCookie(r); err == nil {
		json.Write(w, http.StatusOK, newProfileResponse(profile))
		return
	}

	profile, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			json.WriteUnauthorizedError(w, "Not logged in")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	utils.SetSessionCookie(w, profile)
	json.Write(w, http.StatusOK, newProfileResponse(profile))
}
