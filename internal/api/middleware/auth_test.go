package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/infrastructure/security"
)

type countingIssuer struct {
	calls   int
	subject string
	err     error
}

func (s *countingIssuer) Issue(string) (string, error) { return "", nil }

func (s *countingIssuer) Resolve(string) (string, error) {
	s.calls++
	return s.subject, s.err
}

// domainErrorHandler stands in for the api package's handler.
func domainErrorHandler(err error, c echo.Context) {
	var de *domain.Error
	if errors.As(err, &de) {
		_ = c.JSON(de.Status(), map[string]string{"message": de.Message, "code": de.Code()})
		return
	}
	_ = c.NoContent(http.StatusInternalServerError)
}

func runAuth(t *testing.T, issuer *countingIssuer, header string) (*httptest.ResponseRecorder, bool, domain.Identity) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = domainErrorHandler
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		called   bool
		identity domain.Identity
	)
	handler := Auth(issuer)(func(c echo.Context) error {
		called = true
		identity, _ = c.Get(IdentityKey).(domain.Identity)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		e.HTTPErrorHandler(err, c)
	}
	return rec, called, identity
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer := &countingIssuer{subject: "42"}
	rec, called, identity := runAuth(t, issuer, "Bearer abc.def.ghi")

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if identity.UserID != "42" {
		t.Fatalf("identity not set: %+v", identity)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	issuer := &countingIssuer{subject: "1"}
	_, called, _ := runAuth(t, issuer, "bEaReR tok")
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer    ", "abc"} {
		issuer := &countingIssuer{subject: "1"}
		rec, called, _ := runAuth(t, issuer, header)

		if called {
			t.Fatalf("%q: should not reach next", header)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
		if issuer.calls != 0 {
			t.Fatalf("%q: resolver must not be consulted", header)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	issuer := &countingIssuer{err: security.ErrTokenSignature}
	rec, called, _ := runAuth(t, issuer, "Bearer forged")

	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if issuer.calls != 1 {
		t.Fatalf("expected one resolve call, got %d", issuer.calls)
	}
}

func TestAuthMiddleware_RealJWT(t *testing.T) {
	e := echo.New()
	jwtIssuer := security.NewJWTIssuer("secret", time.Hour)
	token, err := jwtIssuer.Issue("7")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.Identity
	handler := Auth(jwtIssuer)(func(c echo.Context) error {
		got, _ = c.Get(IdentityKey).(domain.Identity)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.UserID != "7" {
		t.Fatalf("unexpected identity %+v", got)
	}

	other := security.NewJWTIssuer("other-secret", time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c = e.NewContext(req, httptest.NewRecorder())
	if err := Auth(other)(func(echo.Context) error { return nil })(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign signature, got %v", err)
	}
}
