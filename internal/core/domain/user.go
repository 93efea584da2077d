package domain

import "time"

// Role is derived from the caller's email on every request; it is never stored.
type Role string

const (
	RoleAgent  Role = "agente"
	RoleClient Role = "cliente"
)

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Provider  string
	TokenID   string
	ExpiresAt time.Time
}
