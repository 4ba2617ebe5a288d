package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

const msgInvalidCredentials = "Invalid credentials"

// AuthService implements registration and login.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, email, hash, name)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login answers an unknown email and a wrong password with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		s.log.Warn().Msg("login rejected: unknown email")
		return nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Warn().Str("user_id", user.ID).Msg("login rejected: bad password")
		return nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &ports.AuthResult{Token: token, User: domain.ToPublicUser(user)}, nil
}
