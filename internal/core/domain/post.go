package domain

import "time"

// Post is immutable once created.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostPage is a contiguous slice of posts in creation order plus the full count.
type PostPage struct {
	Items []*Post
	Total int
}

// Comment belongs to exactly one post.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
