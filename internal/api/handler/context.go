package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/agencia-oeste/viajes-api/internal/api/middleware"
	"github.com/agencia-oeste/viajes-api/internal/core/domain"
)

// ctxIdentity returns the caller verified by the Auth middleware. An empty
// email means the middleware did not run, which is reported as a missing
// token rather than trusted.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.Email == "" {
		return nil, domain.ErrMissingToken
	}
	return id, nil
}

// bind decodes the JSON body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	return c.Validate(req)
}
