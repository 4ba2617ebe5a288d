package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quillpost/blog-api/internal/core/domain"
	"github.com/quillpost/blog-api/internal/core/ports"
)

const (
	collectionUsers    = "users"
	collectionPosts    = "posts"
	collectionComments = "comments"
	collectionCounters = "counters"
)

// Store is a MongoDB-backed implementation of ports.Store. Email uniqueness
// is enforced by a unique index; ids come from per-collection $inc counters.
type Store struct {
	db       *mongo.Database
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	counters *mongo.Collection
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		users:    db.Collection(collectionUsers),
		posts:    db.Collection(collectionPosts),
		comments: db.Collection(collectionComments),
		counters: db.Collection(collectionCounters),
	}
}

type userDoc struct {
	Seq          int64     `bson:"_id"`
	ID           string    `bson:"id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

type postDoc struct {
	Seq       int64     `bson:"_id"`
	ID        string    `bson:"id"`
	AuthorID  string    `bson:"author_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

type commentDoc struct {
	Seq       int64     `bson:"_id"`
	ID        string    `bson:"id"`
	AuthorID  string    `bson:"author_id"`
	PostID    string    `bson:"post_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

// EnsureIndexes creates the indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if _, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}
	return nil
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// nextSeq atomically increments the named counter and returns its new value.
// Counter values are never handed out twice, even when the insert that
// requested them fails.
func (s *Store) nextSeq(ctx context.Context, name string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return out.Seq, nil
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.PublicUser, error) {
	if email == "" || passwordHash == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}
	if name == "" {
		name = domain.DefaultUserName
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Cheap pre-check so a duplicate email does not burn a counter value.
	// The unique index remains the authority under concurrency.
	if n, err := s.users.CountDocuments(ctx, bson.M{"email": email}); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	} else if n > 0 {
		return nil, domain.NewConflictError("Email already in use")
	}

	seq, err := s.nextSeq(ctx, collectionUsers)
	if err != nil {
		return nil, err
	}

	doc := userDoc{
		Seq:          seq,
		ID:           strconv.FormatInt(seq, 10),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewConflictError("Email already in use")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return domain.ToPublicUser(doc.toDomain()), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"id": id})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) CreatePost(ctx context.Context, authorID, title, content string) (*domain.Post, error) {
	if authorID == "" || title == "" {
		return nil, domain.NewValidationError("Author and title are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	seq, err := s.nextSeq(ctx, collectionPosts)
	if err != nil {
		return nil, err
	}
	doc := postDoc{
		Seq:       seq,
		ID:        strconv.FormatInt(seq, 10),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *Store) FindPostByID(ctx context.Context, id string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return doc.toDomain(), nil
}

// ListPosts orders by the numeric sequence, which is insertion order.
func (s *Store) ListPosts(ctx context.Context, offset, limit int) (domain.PostPage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	page := domain.PostPage{Items: []*domain.Post{}}

	total, err := s.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return page, fmt.Errorf("count posts: %w", err)
	}
	page.Total = int(total)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || int64(offset) >= total {
		return page, nil
	}

	cur, err := s.posts.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return page, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return page, fmt.Errorf("decode post: %w", err)
		}
		page.Items = append(page.Items, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return page, fmt.Errorf("list posts: %w", err)
	}
	return page, nil
}

func (s *Store) CreateComment(ctx context.Context, authorID, postID, content string) (*domain.Comment, error) {
	if authorID == "" || postID == "" || content == "" {
		return nil, domain.NewValidationError("Author, postId, and content are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	seq, err := s.nextSeq(ctx, collectionComments)
	if err != nil {
		return nil, err
	}
	doc := commentDoc{
		Seq:       seq,
		ID:        strconv.FormatInt(seq, 10),
		AuthorID:  authorID,
		PostID:    postID,
		Content:   content,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return doc.toDomain(), nil
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func (d postDoc) toDomain() *domain.Post {
	return &domain.Post{
		ID:        d.ID,
		AuthorID:  d.AuthorID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (d commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        d.ID,
		AuthorID:  d.AuthorID,
		PostID:    d.PostID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
	}
}
