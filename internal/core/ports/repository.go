package ports

import (
	"context"

	"github.com/quillpost/blog-api/internal/core/domain"
)

// UserRepository persists accounts. Lookups return (nil, nil) on a miss;
// errors are reserved for backend failures.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.PublicUser, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
}

// PostRepository persists posts in creation order.
type PostRepository interface {
	// CreatePost does not verify that authorID exists; the caller has already
	// authenticated the author.
	CreatePost(ctx context.Context, authorID, title, content string) (*domain.Post, error)
	FindPostByID(ctx context.Context, id string) (*domain.Post, error)
	// ListPosts returns up to limit posts starting at offset and the total count.
	ListPosts(ctx context.Context, offset, limit int) (domain.PostPage, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, authorID, postID, content string) (*domain.Comment, error)
}

// Store is the full data store contract. Backends implement all three.
type Store interface {
	UserRepository
	PostRepository
	CommentRepository
}
