// Package auth validates credentials against the seeded user directory
// and keeps the active session profile in the persistent store.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/bmaportal/ticketd/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	logger   *zap.SugaredLogger
}

func NewService(users domain.UserRepository, sessions domain.SessionRepository, logger *zap.SugaredLogger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Login checks the credentials and persists the resulting profile as
// the current session. A wrong email and a wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Warnw("failed login attempt", "email", email)
		return nil, domain.ErrUnauthorized
	}

	profile := user.Profile()
	if err := s.sessions.Set(ctx, &profile); err != nil {
		return nil, err
	}

	s.logger.Infow("user logged in", "user_id", profile.ID, "role", profile.Role)
	return &profile, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser restores the session persisted by a previous Login.
// Returns ErrNoSession when nobody is logged in.
func (s *Service) CurrentUser(ctx context.Context) (*domain.Profile, error) {
	return s.sessions.Get(ctx)
}
