package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bmaportal/ticketd/internal/domain"
)

const CookieSession = "ticketd_session"

type contextKey string

const profileKey contextKey = "profile"

// SetSessionCookie stores the profile as a base64 JSON blob. The
// portal is a local single-user tool; the cookie is identity, not a
// capability token.
func SetSessionCookie(w http.ResponseWriter, profile *domain.Profile) {
	data, _ := json.Marshal(profile)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieSession,
		Value:    base64.StdEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(240 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieSession,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(-24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}

func ProfileFromCookie(r *http.Request) (*domain.Profile, error) {
	cookie, err := r.Cookie(CookieSession)
	if err != nil {
		return nil, domain.ErrNoSession
	}

	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, domain.ErrNoSession
	}

	profile := &domain.Profile{}
	if err := json.Unmarshal(decoded, profile); err != nil || profile.ID == "" {
		return nil, domain.ErrNoSession
	}
	return profile, nil
}

func WithProfile(ctx context.Context, profile *domain.Profile) context.Context {
	return context.WithValue(ctx, profileKey, profile)
}

func ProfileFromContext(ctx context.Context) (*domain.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(*domain.Profile)
	return profile, ok
}
