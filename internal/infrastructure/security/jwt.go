package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quillpost/blog-api/internal/core/domain"
)

// Token failures. Each one also matches domain.ErrUnauthorized.
var (
	ErrTokenMalformed = &tokenError{reason: "malformed token"}
	ErrTokenExpired   = &tokenError{reason: "token expired"}
	ErrTokenSignature = &tokenError{reason: "token signature mismatch"}
)

type tokenError struct{ reason string }

func (e *tokenError) Error() string { return e.reason }

func (e *tokenError) Is(target error) bool {
	if de, ok := target.(*domain.Error); ok {
		return de.Kind == domain.KindUnauthorized
	}
	t, ok := target.(*tokenError)
	return ok && t == e
}

// JWTIssuer issues HS256 tokens carrying sub, iat and exp.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// JWTOption customizes a JWTIssuer.
type JWTOption func(*JWTIssuer)

// WithIssuer sets and enforces the iss claim.
func WithIssuer(iss string) JWTOption {
	return func(j *JWTIssuer) { j.issuer = iss }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) JWTOption {
	return func(j *JWTIssuer) { j.now = now }
}

func NewJWTIssuer(secret string, ttl time.Duration, opts ...JWTOption) *JWTIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	j := &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JWTIssuer) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("issue token: empty subject")
	}
	now := j.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve returns the subject of a valid token, or one of ErrTokenMalformed,
// ErrTokenExpired, ErrTokenSignature.
func (j *JWTIssuer) Resolve(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)

	switch {
	case err == nil && tkn.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "", ErrTokenSignature
	default:
		return "", ErrTokenMalformed
	}

	if claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}
