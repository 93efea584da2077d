package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

type stubProvider struct {
	profile *ports.ExternalProfile
	err     error
}

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (p *stubProvider) Exchange(context.Context, string) (*ports.ExternalProfile, error) {
	return p.profile, p.err
}

func newTestFederatedService(p ports.IdentityProvider) *FederatedAuthService {
	issuer := newTestAuthService(newStubUserRepo(), nil)
	return NewFederatedAuthService(p, issuer, "http://localhost:5173/", zerolog.Nop())
}

func parseRedirect(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid redirect %q: %v", raw, err)
	}
	if u.Host != "localhost:5173" || u.Path != "/auth/callback" {
		t.Fatalf("unexpected redirect target %q", raw)
	}
	return u.Query()
}

func TestFederatedAuthService_Complete_Success(t *testing.T) {
	svc := newTestFederatedService(&stubProvider{profile: &ports.ExternalProfile{
		ID: "7", Login: "octo", Name: "Octo Cat", Email: "octo@mail.cl", Provider: "github",
	}})

	q := parseRedirect(t, svc.Complete(context.Background(), "code-1"))
	if q.Get("error") != "" {
		t.Fatalf("unexpected error %q", q.Get("error"))
	}
	if q.Get("email") != "octo@mail.cl" || q.Get("name") != "Octo Cat" || q.Get("provider") != "github" {
		t.Fatalf("unexpected redirect query: %v", q)
	}

	id, err := svc.issuer.(*AuthService).VerifyToken(context.Background(), q.Get("token"))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.Email != "octo@mail.cl" || id.Provider != "github" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestFederatedAuthService_Complete_EmailFallback(t *testing.T) {
	svc := newTestFederatedService(&stubProvider{profile: &ports.ExternalProfile{
		ID: "7", Login: "octo", Provider: "github",
	}})

	q := parseRedirect(t, svc.Complete(context.Background(), "code-1"))
	if q.Get("email") != "octo@github.com" || q.Get("name") != "octo" {
		t.Fatalf("unexpected fallback identity: %v", q)
	}
}

func TestFederatedAuthService_Complete_Failures(t *testing.T) {
	cases := []struct {
		name     string
		provider ports.IdentityProvider
		code     string
		want     string
	}{
		{"no code", &stubProvider{}, "", ports.FederatedErrNoCode},
		{"no access token", &stubProvider{err: fmt.Errorf("exchange: %w", ports.ErrNoAccessToken)}, "c", ports.FederatedErrNoAccessToken},
		{"profile failure", &stubProvider{err: errors.New("boom")}, "c", ports.FederatedErrAuthFailed},
		{"not configured", nil, "c", ports.FederatedErrNotConfigured},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestFederatedService(tc.provider)
			q := parseRedirect(t, svc.Complete(context.Background(), tc.code))
			if q.Get("error") != tc.want {
				t.Fatalf("error = %q, want %q", q.Get("error"), tc.want)
			}
			if q.Get("token") != "" {
				t.Fatalf("failure redirect must not carry a token")
			}
		})
	}
}

func TestFederatedAuthService_LoginURL(t *testing.T) {
	svc := newTestFederatedService(&stubProvider{})
	if !svc.Enabled() {
		t.Fatalf("expected service to be enabled")
	}
	if got := svc.LoginURL("abc"); !strings.HasSuffix(got, "state=abc") {
		t.Fatalf("unexpected login url %q", got)
	}

	disabled := newTestFederatedService(nil)
	if disabled.Enabled() {
		t.Fatalf("expected service to be disabled")
	}
	if q := parseRedirect(t, disabled.LoginURL("abc")); q.Get("error") != ports.FederatedErrNotConfigured {
		t.Fatalf("unexpected disabled login url query %v", q)
	}
}
