package repository

import (
	"context"

	"github.com/bmaportal/ticketd/internal/domain"
	"github.com/bmaportal/ticketd/internal/infrastructure/kv"
)

type sessionRepository struct {
	store *kv.Store
}

func NewSessionRepository(store *kv.Store) domain.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Get(ctx context.Context) (*domain.Profile, error) {
	var profile domain.Profile
	found, err := r.store.Get(ctx, kv.KeyCurrentUser, &profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNoSession
	}
	return &profile, nil
}

func (r *sessionRepository) Set(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidInput
	}
	return r.store.Set(ctx, kv.KeyCurrentUser, profile)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, kv.KeyCurrentUser)
}
