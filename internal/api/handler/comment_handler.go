package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillpost/blog-api/internal/api/metrics"
	"github.com/quillpost/blog-api/internal/core/ports"
)

type CommentHandler struct {
	commentService ports.CommentService
	metrics        *metrics.Metrics
}

func NewCommentHandler(commentService ports.CommentService, m *metrics.Metrics) *CommentHandler {
	return &CommentHandler{commentService: commentService, metrics: m}
}

// Create adds a comment to an existing post.
//
// @Summary      Add comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCommentRequest  true  "Comment"
// @Success      201   {object}  domain.Comment
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.AddComment(c.Request().Context(), identity, req.PostID, req.Content)
	if err != nil {
		return err
	}

	h.metrics.CommentCreated()
	return c.JSON(http.StatusCreated, comment)
}
