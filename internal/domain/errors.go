package domain

import "errors"

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketExists      = errors.New("ticket already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("invalid email or password")
	ErrNoSession         = errors.New("no active session")

	// ErrConflict is reserved for concurrent-write detection once the
	// store grows a second writer.
	ErrConflict = errors.New("conflict")
)
