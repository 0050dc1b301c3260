// Package seed provisions the demo user directory and a couple of
// sample tickets on first run. Seeding is idempotent: existing data is
// never touched.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/bmaportal/ticketd/internal/domain"
	"github.com/bmaportal/ticketd/internal/infrastructure/kv"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "password"

func Run(ctx context.Context, store *kv.Store, users domain.UserRepository, tickets domain.TicketRepository, logger *zap.SugaredLogger) error {
	if err := seedUsers(ctx, users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := seedTickets(ctx, store, tickets); err != nil {
		return fmt.Errorf("seed tickets: %w", err)
	}
	logger.Infow("seed complete")
	return nil
}

func seedUsers(ctx context.Context, users domain.UserRepository) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	directory := []domain.User{
		{
			ID:           "u1",
			Name:         "Admin User",
			Email:        "admin@bma.com",
			Role:         domain.RoleAdmin,
			PasswordHash: string(hash),
		},
		{
			ID:           "u2",
			Name:         "Committee Member 1",
			Email:        "member1@bma.com",
			Role:         domain.RoleCommitteeMember,
			PasswordHash: string(hash),
		},
	}

	return users.Seed(ctx, directory)
}

func seedTickets(ctx context.Context, store *kv.Store, tickets domain.TicketRepository) error {
	var existing []domain.Ticket
	found, err := store.Get(ctx, kv.KeyTickets, &existing)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	now := time.Now()

	canteen := &domain.Ticket{
		ID:          "TKT-0001",
		Title:       "Canteen cleanliness",
		Description: "Tables are not being wiped properly after lunch hours.",
		Category:    domain.CategoryCanteen,
		Type:        domain.TypeComplaint,
		Priority:    domain.PriorityMedium,
		Status:      domain.StatusInProgress,
		CreatedAt:   now.Add(-5 * 24 * time.Hour),
		CreatedBy:   "u1",
		AssignedTo:  "u2",
		ActivityLog: []domain.ActivityEntry{
			{
				ID:        uuid.NewString(),
				Action:    "Assigned to Committee Member 1",
				Timestamp: now.Add(-4 * 24 * time.Hour),
				UserID:    "u1",
			},
			{
				ID:        uuid.NewString(),
				Action:    "Created Ticket",
				Timestamp: now.Add(-5 * 24 * time.Hour),
				UserID:    "u1",
			},
		},
	}

	kitchen := &domain.Ticket{
		ID:          "TKT-0002",
		Title:       "Broken Light in Kitchen",
		Description: "The main tube light in the kitchen is flickering and causing issues.",
		Category:    domain.CategoryKitchen,
		Type:        domain.TypeMaintenance,
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusOpen,
		CreatedAt:   now.Add(-2 * 24 * time.Hour),
		CreatedBy:   "u2",
		ActivityLog: []domain.ActivityEntry{
			{
				ID:        uuid.NewString(),
				Action:    "Created Ticket",
				Timestamp: now.Add(-2 * 24 * time.Hour),
				UserID:    "u2",
			},
		},
	}

	// Oldest first so the stored collection ends up newest-first.
	for _, t := range []*domain.Ticket{canteen, kitchen} {
		if err := tickets.Insert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
