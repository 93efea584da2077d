package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

// RBAC enforces role-based access control. The role is derived from the
// authenticated email on every request, so it must run after Auth.
func RBAC(roles ports.RoleResolver, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrMissingToken
			}
			if _, ok := allowed[roles.RoleOf(id.Email)]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
