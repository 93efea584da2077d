package ports

import (
	"context"
	"errors"
)

var (
	// ErrNoAccessToken means the provider did not hand out an access token
	// for the authorization code.
	ErrNoAccessToken = errors.New("no access token")
	// ErrProfileUnavailable means the profile or email lookup failed.
	ErrProfileUnavailable = errors.New("profile unavailable")
)

// Failure codes reported to the frontend callback page.
const (
	FederatedErrNoCode        = "no_code"
	FederatedErrInvalidState  = "invalid_state"
	FederatedErrNoAccessToken = "no_access_token"
	FederatedErrAuthFailed    = "github_auth_failed"
	FederatedErrNotConfigured = "github_not_configured"
)

// ExternalProfile is what a federated provider tells us about the user.
type ExternalProfile struct {
	ID       string
	Login    string
	Name     string
	Email    string
	Provider string
}

// IdentityProvider performs an OAuth2 authorization-code login.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ExternalProfile, error)
}

// FederatedAuthService turns a provider callback into a frontend redirect.
type FederatedAuthService interface {
	Enabled() bool
	LoginURL(state string) string
	Complete(ctx context.Context, code string) string
	FailureURL(code string) string
}
