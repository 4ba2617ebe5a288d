// Package memory implements the data store in process memory. State lives as
// long as the Store value; nothing is persisted.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

// Store keeps users, posts and comments behind a single RWMutex: every
// mutation, including id assignment, is exclusive; lookups may run together.
type Store struct {
	mu sync.RWMutex

	users    []*domain.User
	byEmail  map[string]*domain.User
	byUserID map[string]*domain.User
	posts    []*domain.Post
	byPostID map[string]*domain.Post
	comments []*domain.Comment

	userSeq    uint64
	postSeq    uint64
	commentSeq uint64

	now func() time.Time
}

var _ ports.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		byEmail:  make(map[string]*domain.User),
		byUserID: make(map[string]*domain.User),
		byPostID: make(map[string]*domain.Post),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func nextID(seq *uint64) string {
	*seq++
	return strconv.FormatUint(*seq, 10)
}

// --- Users ---

func (s *Store) CreateUser(_ context.Context, email, passwordHash, name string) (*domain.PublicUser, error) {
	if email == "" || passwordHash == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}
	if name == "" {
		name = domain.DefaultUserName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, domain.NewConflictError("Email already in use")
	}

	u := &domain.User{
		ID:           nextID(&s.userSeq),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users = append(s.users, u)
	s.byEmail[email] = u
	s.byUserID[u.ID] = u

	return domain.ToPublicUser(u), nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.byEmail[email]), nil
}

func (s *Store) FindUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.byUserID[id]), nil
}

// --- Posts ---

func (s *Store) CreatePost(_ context.Context, authorID, title, content string) (*domain.Post, error) {
	if authorID == "" || title == "" {
		return nil, domain.NewValidationError("Author and title are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &domain.Post{
		ID:        nextID(&s.postSeq),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.posts = append(s.posts, p)
	s.byPostID[p.ID] = p

	clone := *p
	return &clone, nil
}

func (s *Store) FindPostByID(_ context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byPostID[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (s *Store) ListPosts(_ context.Context, offset, limit int) (domain.PostPage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.posts)
	page := domain.PostPage{Items: []*domain.Post{}, Total: total}
	if offset >= total {
		return page, nil
	}

	end := total
	if limit < total-offset {
		end = offset + limit
	}
	page.Items = make([]*domain.Post, 0, end-offset)
	for _, p := range s.posts[offset:end] {
		clone := *p
		page.Items = append(page.Items, &clone)
	}
	return page, nil
}

// --- Comments ---

func (s *Store) CreateComment(_ context.Context, authorID, postID, content string) (*domain.Comment, error) {
	if authorID == "" || postID == "" || content == "" {
		return nil, domain.NewValidationError("Author, postId, and content are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := &domain.Comment{
		ID:        nextID(&s.commentSeq),
		AuthorID:  authorID,
		PostID:    postID,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.comments = append(s.comments, c)

	clone := *c
	return &clone, nil
}

// CommentCount reports how many comments have been stored.
func (s *Store) CommentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}

// Ping always succeeds; it lets the readiness probe treat every backend alike.
func (s *Store) Ping(context.Context) error { return nil }

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
