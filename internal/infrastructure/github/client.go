// Package github implements the GitHub OAuth2 identity provider.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

const (
	providerName      = "github"
	defaultAPIBaseURL = "https://api.github.com"
	requestTimeout    = 10 * time.Second
)

// Config holds the OAuth app credentials. AuthURL, TokenURL and APIBaseURL
// default to github.com and exist so tests can point at a fake server.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
	HTTPClient   *http.Client
}

type Client struct {
	oauth   *oauth2.Config
	apiBase string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	endpoint := endpoints.GitHub
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"user:email"},
		},
		apiBase: strings.TrimRight(apiBase, "/"),
		http:    httpClient,
		log:     log,
	}
}

func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades the code for an access token and loads the profile. The
// primary address from /user/emails wins over the public profile email; a
// failed email lookup only drops that preference.
func (c *Client) Exchange(ctx context.Context, code string) (*ports.ExternalProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrNoAccessToken, err)
	}
	if tok.AccessToken == "" {
		return nil, ports.ErrNoAccessToken
	}

	var user githubUser
	if err := c.get(ctx, tok.AccessToken, "/user", &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrProfileUnavailable, err)
	}

	email := user.Email
	var emails []githubEmail
	if err := c.get(ctx, tok.AccessToken, "/user/emails", &emails); err != nil {
		c.log.Warn().Err(err).Str("login", user.Login).Msg("github email lookup failed")
	}
	for _, e := range emails {
		if e.Primary && e.Email != "" {
			email = e.Email
			break
		}
	}

	return &ports.ExternalProfile{
		ID:       strconv.FormatInt(user.ID, 10),
		Login:    user.Login,
		Name:     user.Name,
		Email:    email,
		Provider: providerName,
	}, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
