package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

// IdentityKey is the echo context key holding the caller's domain.Identity.
const IdentityKey = "identity"

// Auth resolves the bearer token and stores the caller's identity in the
// echo context. Missing, malformed and invalid credentials all yield 401;
// the token is only handed to the resolver once the header parses.
func Auth(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrUnauthorized
			}

			subject, err := tokens.Resolve(token)
			if err != nil || subject == "" {
				return domain.ErrUnauthorized
			}

			c.Set(IdentityKey, domain.Identity{UserID: subject})
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
