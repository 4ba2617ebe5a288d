package ports

import (
	"context"

	"github.com/quillpost/blog-api/internal/core/domain"
)

// PostList is a normalized page of posts.
type PostList struct {
	Items []*domain.Post `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type PostService interface {
	// ListPosts accepts raw page/limit values; non-positive values fall back
	// to defaults.
	ListPosts(ctx context.Context, page, limit int) (*PostList, error)
	CreatePost(ctx context.Context, identity domain.Identity, title, content string) (*domain.Post, error)
}

type CommentService interface {
	AddComment(ctx context.Context, identity domain.Identity, postID, content string) (*domain.Comment, error)
}
