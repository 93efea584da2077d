package middleware

import (
	"context"
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

// IdentityKey is the context key holding the verified *domain.Identity.
const IdentityKey = "identity"

const authErrorKey = "auth_error"

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
}

// Auth requires "Authorization: Bearer <token>" and stores the verified
// identity in the context. A missing header fails with ErrMissingToken and
// a rejected token with ErrInvalidToken.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  IdentityKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			id, err := verifier.VerifyToken(c.Request().Context(), auth)
			if err != nil {
				c.Set(authErrorKey, err)
				return nil, err
			}
			return id, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if parseErr, ok := c.Get(authErrorKey).(error); ok {
				if errors.Is(parseErr, domain.ErrMissingToken) {
					return domain.ErrMissingToken
				}
				return domain.ErrInvalidToken
			}
			return domain.ErrMissingToken
		},
	})
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(*domain.Identity)
	return id, ok && id != nil
}

// BearerToken extracts the raw token from the Authorization header, or ""
// when it is absent or uses another scheme.
func BearerToken(c echo.Context) string {
	const prefix = "Bearer "
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
