package domain

import "context"

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleCommitteeMember Role = "committee_member"
)

// User is one entry of the seeded directory. The directory is static:
// there is no registration or profile editing.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"password_hash"`
}

// Profile is the user as exposed outside the auth service. It never
// carries the password hash.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

type UserRepository interface {
	All(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Seed(ctx context.Context, users []User) error
}

// SessionRepository holds the single authenticated profile for this
// device. Get returns ErrNoSession when nobody is logged in.
type SessionRepository interface {
	Get(ctx context.Context) (*Profile, error)
	Set(ctx context.Context, profile *Profile) error
	Clear(ctx context.Context) error
}
