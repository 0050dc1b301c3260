package repository

import (
	"context"
	"strings"

	"github.com/bmaportal/ticketd/internal/domain"
	"github.com/bmaportal/ticketd/internal/infrastructure/kv"
)

type userRepository struct {
	store *kv.Store
}

func NewUserRepository(store *kv.Store) domain.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) All(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if _, err := r.store.Get(ctx, kv.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Seed writes the directory only when no directory exists yet, so a
// restart never clobbers it.
func (r *userRepository) Seed(ctx context.Context, users []domain.User) error {
	var existing []domain.User
	found, err := r.store.Get(ctx, kv.KeyUsers, &existing)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return r.store.Set(ctx, kv.KeyUsers, users)
}
