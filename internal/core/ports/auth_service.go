package ports

import (
	"context"
	"time"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

// Profile is the public view of an account.
type Profile struct {
	ID        string
	Email     string
	CreatedAt time.Time
	Role      domain.Role
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
	Profile(ctx context.Context, email string) (*Profile, error)
	RoleOf(email string) domain.Role
}

// RoleResolver derives a role from an email address.
type RoleResolver interface {
	RoleOf(email string) domain.Role
}

// TokenIssuer mints local bearer tokens for an already verified identity.
type TokenIssuer interface {
	IssueToken(identity domain.Identity) (string, error)
}
