package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpost/blog-api/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestJWTIssuer_ResolveBeforeExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := NewJWTIssuer("secret", time.Hour, WithClock(clock.Now))

	tok, err := iss.Issue("42")
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	sub, err := iss.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestJWTIssuer_ResolveAfterExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := NewJWTIssuer("secret", time.Hour, WithClock(clock.Now))

	tok, err := iss.Issue("42")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour + time.Second)
	sub, err := iss.Resolve(tok)
	assert.Empty(t, sub)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_TamperedPayload(t *testing.T) {
	iss := NewJWTIssuer("secret", time.Hour)
	tok, err := iss.Issue("1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"sub":"1"`, `"sub":"2"`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = iss.Resolve(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	tok, err := NewJWTIssuer("a", time.Hour).Issue("1")
	require.NoError(t, err)

	_, err = NewJWTIssuer("b", time.Hour).Resolve(tok)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestJWTIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTIssuer("secret", time.Hour).Resolve(tok)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTIssuer_RequiresExpiry(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTIssuer("secret", time.Hour).Resolve(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestJWTIssuer_Malformed(t *testing.T) {
	iss := NewJWTIssuer("secret", time.Hour)
	for _, tok := range []string{"", "not-a-token", "1.secret.1d", "a.b.c"} {
		_, err := iss.Resolve(tok)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), tok)
	}
}

func TestJWTIssuer_IssuerMismatch(t *testing.T) {
	tok, err := NewJWTIssuer("secret", time.Hour, WithIssuer("other")).Issue("1")
	require.NoError(t, err)

	_, err = NewJWTIssuer("secret", time.Hour, WithIssuer("blog-api")).Resolve(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestJWTIssuer_EmptySubject(t *testing.T) {
	_, err := NewJWTIssuer("secret", time.Hour).Issue("")
	assert.Error(t, err)
}
