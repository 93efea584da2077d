package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

type stubFederated struct {
	enabled  bool
	complete func(ctx context.Context, code string) string
}

func (s *stubFederated) Enabled() bool { return s.enabled }

func (s *stubFederated) LoginURL(state string) string {
	if !s.enabled {
		return s.FailureURL(ports.FederatedErrNotConfigured)
	}
	return "https://github.example/authorize?state=" + state
}

func (s *stubFederated) Complete(ctx context.Context, code string) string {
	return s.complete(ctx, code)
}

func (s *stubFederated) FailureURL(code string) string {
	return "http://front/auth/callback?error=" + code
}

func TestOAuthHandler_GitHubLogin_SetsStateCookie(t *testing.T) {
	e := newTestEcho()
	handler := NewOAuthHandler(&stubFederated{enabled: true}, false)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/github", nil), rec)

	if err := handler.GitHubLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != stateCookie || cookies[0].Value == "" {
		t.Fatalf("expected state cookie, got %+v", cookies)
	}
	if !strings.HasSuffix(rec.Header().Get("Location"), "state="+cookies[0].Value) {
		t.Fatalf("redirect does not carry the cookie state: %s", rec.Header().Get("Location"))
	}
}

func TestOAuthHandler_GitHubLogin_NotConfigured(t *testing.T) {
	e := newTestEcho()
	handler := NewOAuthHandler(&stubFederated{}, false)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/github", nil), rec)

	if err := handler.GitHubLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get("Location"); loc != "http://front/auth/callback?error=github_not_configured" {
		t.Fatalf("unexpected redirect %s", loc)
	}
}

func TestOAuthHandler_GitHubCallback(t *testing.T) {
	cases := []struct {
		name   string
		target string
		cookie string
		want   string
	}{
		{"no code", "/api/auth/github/callback", "s1", "http://front/auth/callback?error=no_code"},
		{"missing cookie", "/api/auth/github/callback?code=c&state=s1", "", "http://front/auth/callback?error=invalid_state"},
		{"state mismatch", "/api/auth/github/callback?code=c&state=s2", "s1", "http://front/auth/callback?error=invalid_state"},
		{"success", "/api/auth/github/callback?code=c&state=s1", "s1", "http://front/auth/callback?token=t"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			handler := NewOAuthHandler(&stubFederated{
				enabled: true,
				complete: func(ctx context.Context, code string) string {
					if code != "c" {
						t.Fatalf("unexpected code %q", code)
					}
					return "http://front/auth/callback?token=t"
				},
			}, false)

			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: stateCookie, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()

			if err := handler.GitHubCallback(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusTemporaryRedirect {
				t.Fatalf("expected 307, got %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tc.want {
				t.Fatalf("redirect = %s, want %s", loc, tc.want)
			}
		})
	}
}
