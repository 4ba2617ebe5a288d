package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quillpost/blog-api/internal/api/metrics"
	"github.com/quillpost/blog-api/internal/core/ports"
)

type PostHandler struct {
	postService ports.PostService
	metrics     *metrics.Metrics
}

func NewPostHandler(postService ports.PostService, m *metrics.Metrics) *PostHandler {
	return &PostHandler{postService: postService, metrics: m}
}

// List returns one page of posts in creation order. Unparseable page or
// limit values fall back to the defaults instead of failing.
//
// @Summary      List posts
// @Tags         posts
// @Produce      json
// @Param        page   query     int  false  "Page number, 1-based"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  ports.PostList
// @Failure      429    {object}  errorResponse
// @Router       /api/posts [get]
func (h *PostHandler) List(c echo.Context) error {
	page := queryInt(c, "page")
	limit := queryInt(c, "limit")

	result, err := h.postService.ListPosts(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Create publishes a post authored by the caller.
//
// @Summary      Create post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPostRequest  true  "Post"
// @Success      201   {object}  domain.Post
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), identity, req.Title, req.Content)
	if err != nil {
		return err
	}

	h.metrics.PostCreated()
	return c.JSON(http.StatusCreated, post)
}

// queryInt returns 0 for missing or malformed values.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}
