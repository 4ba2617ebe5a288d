package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpost/blog-api/internal/core/domain"
)

func TestStore_CreateUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "a@example.com", "hash-a", "")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, domain.DefaultUserName, u.Name)

	u2, err := s.CreateUser(ctx, "b@example.com", "hash-b", "Bea")
	require.NoError(t, err)
	assert.Equal(t, "2", u2.ID)
	assert.Equal(t, "Bea", u2.Name)

	raw, err := json.Marshal(u2)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash-b")
}

func TestStore_CreateUser_Validation(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "", "hash", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.CreateUser(ctx, "a@example.com", "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Failed validations must not consume ids.
	u, err := s.CreateUser(ctx, "a@example.com", "hash", "")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestStore_CreateUser_Conflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a@example.com", "hash", "")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "a@example.com", "other", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	u, err := s.CreateUser(ctx, "b@example.com", "hash", "")
	require.NoError(t, err)
	assert.Equal(t, "2", u.ID)
}

func TestStore_CreateUser_ConcurrentSameEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, "race@example.com", "hash", "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestStore_FindUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "a@example.com", "hash", "Al")
	require.NoError(t, err)

	byEmail, err := s.FindUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.Equal(t, created, domain.ToPublicUser(byEmail))

	byID, err := s.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, byEmail, byID)

	miss, err := s.FindUserByEmail(ctx, "A@example.com")
	assert.NoError(t, err)
	assert.Nil(t, miss)

	miss, err = s.FindUserByID(ctx, "99")
	assert.NoError(t, err)
	assert.Nil(t, miss)
}

func TestStore_ReturnedValuesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a@example.com", "hash", "")
	require.NoError(t, err)
	u, _ := s.FindUserByEmail(ctx, "a@example.com")
	u.PasswordHash = "mutated"

	again, _ := s.FindUserByEmail(ctx, "a@example.com")
	assert.Equal(t, "hash", again.PasswordHash)

	p, err := s.CreatePost(ctx, "1", "title", "")
	require.NoError(t, err)
	p.Title = "mutated"
	stored, _ := s.FindPostByID(ctx, p.ID)
	assert.Equal(t, "title", stored.Title)
}

func TestStore_CreatePost(t *testing.T) {
	s := New()
	ctx := context.Background()

	p, err := s.CreatePost(ctx, "7", "Hello", "")
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "7", p.AuthorID)
	assert.Equal(t, "", p.Content)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = s.CreatePost(ctx, "", "Hello", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.CreatePost(ctx, "7", "", "body")
	assert.ErrorIs(t, err, domain.ErrValidation)

	p2, err := s.CreatePost(ctx, "7", "Again", "body")
	require.NoError(t, err)
	assert.Equal(t, "2", p2.ID)

	found, err := s.FindPostByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, p2, found)

	missing, err := s.FindPostByID(ctx, "3")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_ListPosts(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		_, err := s.CreatePost(ctx, "1", fmt.Sprintf("post %d", i), "")
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		offset  int
		limit   int
		wantLen int
		firstID string
	}{
		{"first page", 0, 10, 10, "1"},
		{"third page", 20, 10, 5, "21"},
		{"past the end", 30, 10, 0, ""},
		{"exactly at end", 25, 10, 0, ""},
		{"zero limit", 0, 0, 0, ""},
		{"limit beyond total", 0, 1000, 25, "1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, err := s.ListPosts(ctx, tc.offset, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, 25, page.Total)
			require.Len(t, page.Items, tc.wantLen)
			assert.NotNil(t, page.Items)
			if tc.wantLen > 0 {
				assert.Equal(t, tc.firstID, page.Items[0].ID)
				for i := 1; i < len(page.Items); i++ {
					assert.Equal(t, fmt.Sprint(tc.offset+i+1), page.Items[i].ID)
				}
			}
		})
	}
}

func TestStore_ListPosts_Empty(t *testing.T) {
	page, err := New().ListPosts(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
}

func TestStore_CreateComment(t *testing.T) {
	s := New()
	ctx := context.Background()

	c, err := s.CreateComment(ctx, "1", "1", "nice")
	require.NoError(t, err)
	assert.Equal(t, "1", c.ID)
	assert.Equal(t, 1, s.CommentCount())

	for _, args := range [][3]string{{"", "1", "x"}, {"1", "", "x"}, {"1", "1", ""}} {
		_, err := s.CreateComment(ctx, args[0], args[1], args[2])
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Equal(t, 1, s.CommentCount())

	c2, err := s.CreateComment(ctx, "2", "1", "again")
	require.NoError(t, err)
	assert.Equal(t, "2", c2.ID)
}

func TestStore_ConcurrentCreatesAssignUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 100
	ids := make(chan string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			p, err := s.CreatePost(ctx, "1", "t", "")
			if assert.NoError(t, err) {
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	page, err := s.ListPosts(ctx, 0, n)
	require.NoError(t, err)
	for i, p := range page.Items {
		assert.Equal(t, fmt.Sprint(i+1), p.ID)
	}
}
