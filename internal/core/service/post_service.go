package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Pagination holds the listing defaults.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

type PostService struct {
	posts      ports.PostRepository
	pagination Pagination
	log        zerolog.Logger
}

func NewPostService(posts ports.PostRepository, pagination Pagination, log zerolog.Logger) *PostService {
	if pagination.DefaultLimit <= 0 {
		pagination.DefaultLimit = DefaultPageLimit
	}
	if pagination.MaxLimit <= 0 {
		pagination.MaxLimit = MaxPageLimit
	}
	if pagination.DefaultLimit > pagination.MaxLimit {
		pagination.DefaultLimit = pagination.MaxLimit
	}
	return &PostService{posts: posts, pagination: pagination, log: log}
}

// normalize maps raw query values onto a valid page and limit.
func (p Pagination) normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = p.DefaultLimit
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

func (s *PostService) ListPosts(ctx context.Context, page, limit int) (*ports.PostList, error) {
	page, limit = s.pagination.normalize(page, limit)

	// Pages far beyond the data would overflow the offset; they are empty anyway.
	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	result, err := s.posts.ListPosts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	items := result.Items
	if items == nil {
		items = []*domain.Post{}
	}
	return &ports.PostList{
		Items: items,
		Total: result.Total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *PostService) CreatePost(ctx context.Context, identity domain.Identity, title, content string) (*domain.Post, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthorized
	}

	post, err := s.posts.CreatePost(ctx, identity.UserID, title, content)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID).Str("author_id", post.AuthorID).Msg("post created")
	return post, nil
}
