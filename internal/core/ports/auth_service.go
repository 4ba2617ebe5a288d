package ports

import (
	"context"

	"github.com/quillpost/blog-api/internal/core/domain"
)

// AuthResult is returned by both login and registration.
type AuthResult struct {
	Token string             `json:"token"`
	User  *domain.PublicUser `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type UserService interface {
	GetProfile(ctx context.Context, identity domain.Identity) (*domain.PublicUser, error)
}
