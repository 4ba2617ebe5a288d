package service

import (
	"context"
	"fmt"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetProfile returns the caller's public profile. A valid token whose subject
// no longer exists yields NotFound.
func (s *UserService) GetProfile(ctx context.Context, identity domain.Identity) (*domain.PublicUser, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.FindUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}
	return domain.ToPublicUser(user), nil
}
