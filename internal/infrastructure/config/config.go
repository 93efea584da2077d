package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	devJWTSecret   = "dev-secret-change-me"
)

type Config struct {
	Port     string `env:"PORT,      default=3001"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Store  StoreConfig
	HTTP   HTTPConfig
	GitHub GitHubConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=24h"  validate:"gt=0"`
	BcryptCost  int           `env:"BCRYPT_COST,  default=10"   validate:"min=4,max=31"`
	AgentEmails []string      `env:"AGENT_EMAILS, default=agente@agencia.cl,admin@agencia.cl"`
}

type StoreConfig struct {
	Driver   string `env:"STORE_DRIVER,   default=file" validate:"oneof=file mongo"`
	Encoding string `env:"STORE_ENCODING, default=json" validate:"oneof=json cbor"`
	DataDir  string `env:"DATA_DIR,       default=data" validate:"required"`
}

type HTTPConfig struct {
	CORSOrigins   []string `env:"CORS_ORIGINS,    default=*"`
	FrontendURL   string   `env:"FRONTEND_URL,    default=http://localhost:5173" validate:"url"`
	AuthRateLimit float64  `env:"AUTH_RATE_LIMIT, default=5"                     validate:"gte=0"`
}

type GitHubConfig struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	RedirectURL  string `env:"GITHUB_REDIRECT_URL, default=http://localhost:3001/api/auth/github/callback"`
}

// Enabled reports whether the GitHub login is configured.
func (g GitHubConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=viajes"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Validate checks field rules and cross-field constraints. It is exported so
// flag overrides can be re-checked after Load.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("config: JWT_SECRET is required outside development")
		}
		c.Auth.JWTSecret = devJWTSecret
	}
	return nil
}

func (c *Config) normalise() {
	c.Auth.AgentEmails = trimAll(c.Auth.AgentEmails)
	c.HTTP.CORSOrigins = trimAll(c.HTTP.CORSOrigins)
	c.HTTP.FrontendURL = strings.TrimRight(c.HTTP.FrontendURL, "/")
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
