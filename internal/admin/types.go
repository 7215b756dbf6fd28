package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/auth"
)

// User is an account in the directory. The password hash never leaves the
// server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Member is a user seen through one tenant: the account plus the roles it
// holds there.
type Member struct {
	User  User        `json:"user"`
	Roles []auth.Role `json:"roles"`
}
