package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
	"github.com/agencia-oeste/viajes-api/internal/core/validation"
	"github.com/agencia-oeste/viajes-api/internal/pkg/metrics"
)

const minPasswordLength = 6

// AuthConfig holds the token and hashing parameters of AuthService.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// Claims is the payload of every bearer token issued by the API.
type Claims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

type credentials struct {
	Email    string `json:"email"    validate:"required,mailbox"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthService implements registration, login and bearer token handling.
type AuthService struct {
	repo    ports.UserRepository
	roles   ports.RoleResolver
	revoker ports.TokenRevoker
	cfg     AuthConfig
	logger  zerolog.Logger
	now     func() time.Time

	dummyHash []byte
}

// NewAuthService builds the service. revoker may be nil, in which case
// logout only acknowledges.
func NewAuthService(repo ports.UserRepository, roles ports.RoleResolver, revoker ports.TokenRevoker, cfg AuthConfig, logger zerolog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("viajes-dummy-password"), cfg.BcryptCost)
	if err != nil {
		logger.Warn().Err(err).Msg("dummy hash not generated")
	}
	return &AuthService{
		repo:      repo,
		roles:     roles,
		revoker:   revoker,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummyHash,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (string, *domain.User, error) {
	if err := validation.Struct(credentials{Email: email, Password: password}); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("generate user id: %w", err)
	}

	user, err := s.repo.Create(ctx, &domain.User{
		ID:           id.String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		}
		return "", nil, err
	}

	token, err := s.IssueToken(domain.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.NewValidationError("email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same bcrypt work as a wrong password.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			metrics.AuthAttemptsTotal.WithLabelValues("login", "unknown_user").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "bad_password").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.IssueToken(domain.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return token, user, nil
}

// Logout revokes the token until it would have expired anyway. Tokens that
// no longer verify, and revocation failures, are acknowledged without error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.revoker == nil || token == "" {
		return nil
	}
	id, err := s.VerifyToken(ctx, token)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		s.logger.Warn().Err(err).Str("jti", id.TokenID).Msg("token revocation failed")
		return nil
	}
	s.logger.Debug().Str("jti", id.TokenID).Msg("token revoked")
	return nil
}

// VerifyToken checks signature, algorithm, expiry and revocation.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Email == "" {
		return nil, domain.ErrInvalidToken
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("revocation lookup failed, accepting token")
		} else if revoked {
			return nil, domain.ErrInvalidToken
		}
	}

	return &domain.Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		Provider:  claims.Provider,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssueToken signs a token for an identity that has already been verified.
func (s *AuthService) IssueToken(identity domain.Identity) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Name:     identity.Name,
		Provider: identity.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) Profile(ctx context.Context, email string) (*ports.Profile, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &ports.Profile{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Role:      s.roles.RoleOf(user.Email),
	}, nil
}

func (s *AuthService) RoleOf(email string) domain.Role {
	return s.roles.RoleOf(email)
}

// AgentAllowList maps the configured agent emails to RoleAgent and everyone
// else to RoleClient. Matching is exact and case-sensitive.
type AgentAllowList struct {
	agents map[string]struct{}
}

func NewAgentAllowList(emails []string) *AgentAllowList {
	agents := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = strings.TrimSpace(e); e != "" {
			agents[e] = struct{}{}
		}
	}
	return &AgentAllowList{agents: agents}
}

func (l *AgentAllowList) RoleOf(email string) domain.Role {
	if _, ok := l.agents[email]; ok {
		return domain.RoleAgent
	}
	return domain.RoleClient
}
