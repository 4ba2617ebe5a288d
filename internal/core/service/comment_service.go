package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

type CommentService struct {
	posts    ports.PostRepository
	comments ports.CommentRepository
	log      zerolog.Logger
}

func NewCommentService(posts ports.PostRepository, comments ports.CommentRepository, log zerolog.Logger) *CommentService {
	return &CommentService{posts: posts, comments: comments, log: log}
}

// AddComment checks the referenced post before writing, so a missing post
// leaves the comment store untouched.
func (s *CommentService) AddComment(ctx context.Context, identity domain.Identity, postID, content string) (*domain.Comment, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	if postID == "" || content == "" {
		return nil, domain.NewValidationError("postId and content are required")
	}

	post, err := s.posts.FindPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	if post == nil {
		return nil, domain.NewNotFoundError("Post not found")
	}

	comment, err := s.comments.CreateComment(ctx, identity.UserID, postID, content)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("comment_id", comment.ID).Str("post_id", postID).Msg("comment added")
	return comment, nil
}
