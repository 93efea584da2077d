package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
	"github.com/agencia-oeste/viajes-api/internal/pkg/metrics"
)

const callbackPath = "/auth/callback"

// FederatedAuthService completes an external OAuth login by issuing a local
// token and building the frontend redirect that carries it.
type FederatedAuthService struct {
	provider    ports.IdentityProvider
	issuer      ports.TokenIssuer
	frontendURL string
	logger      zerolog.Logger
}

// NewFederatedAuthService builds the service. A nil provider leaves the
// federated login disabled.
func NewFederatedAuthService(provider ports.IdentityProvider, issuer ports.TokenIssuer, frontendURL string, logger zerolog.Logger) *FederatedAuthService {
	return &FederatedAuthService{
		provider:    provider,
		issuer:      issuer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

func (s *FederatedAuthService) Enabled() bool { return s.provider != nil }

func (s *FederatedAuthService) LoginURL(state string) string {
	if s.provider == nil {
		return s.FailureURL(ports.FederatedErrNotConfigured)
	}
	return s.provider.AuthCodeURL(state)
}

// Complete exchanges code for a profile and returns the URL the browser
// should be sent to, whether the login succeeded or not.
func (s *FederatedAuthService) Complete(ctx context.Context, code string) string {
	if s.provider == nil {
		return s.FailureURL(ports.FederatedErrNotConfigured)
	}
	if code == "" {
		return s.fail(ports.FederatedErrNoCode, nil)
	}

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, ports.ErrNoAccessToken) {
			return s.fail(ports.FederatedErrNoAccessToken, err)
		}
		return s.fail(ports.FederatedErrAuthFailed, err)
	}

	email := profile.Email
	if email == "" {
		email = profile.Login + "@github.com"
	}
	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	token, err := s.issuer.IssueToken(domain.Identity{
		UserID:   profile.ID,
		Email:    email,
		Name:     name,
		Provider: profile.Provider,
	})
	if err != nil {
		return s.fail(ports.FederatedErrAuthFailed, err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("github", "success").Inc()
	s.logger.Info().Str("email", email).Str("provider", profile.Provider).Msg("federated login")

	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	q.Set("name", name)
	q.Set("provider", profile.Provider)
	return s.frontendURL + callbackPath + "?" + q.Encode()
}

// FailureURL is the frontend callback carrying an error code.
func (s *FederatedAuthService) FailureURL(code string) string {
	return s.frontendURL + callbackPath + "?" + url.Values{"error": {code}}.Encode()
}

func (s *FederatedAuthService) fail(code string, err error) string {
	metrics.AuthAttemptsTotal.WithLabelValues("github", code).Inc()
	s.logger.Warn().Err(err).Str("code", code).Msg("federated login failed")
	return s.FailureURL(code)
}
