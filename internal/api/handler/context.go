package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quillpost/blog-api/internal/api/middleware"
	"github.com/quillpost/blog-api/internal/core/domain"
)

// ctxIdentity returns the identity stored by the Auth middleware. A route
// mounted without the middleware yields 401 rather than an empty identity.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, _ := c.Get(middleware.IdentityKey).(domain.Identity)
	if !identity.Authenticated() {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return identity, nil
}
