package repository

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const TextCodePostNotFound = "POST_NOT_FOUND"

// ErrPostNotFound no post matches the lookup
var ErrPostNotFound = errors.New("post not found", errors.CategoryNotFound).
	WithTextCode(TextCodePostNotFound).
	WithCode(errors.CodeNotFound)

// Post is the Bun model for posts
type Post struct {
	bun.BaseModel `bun:"table:posts"`

	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	AuthorID  uuid.UUID `bun:"author_id,notnull,type:uuid" json:"authorId"`
	Title     string    `bun:"title,notnull" json:"title"`
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// PostStore persists posts through the generic post repository
type PostStore struct {
	repository.Repository[*Post]
	now func() time.Time
}

var _ repository.Repository[*Post] = (*PostStore)(nil)

// NewPostStore creates a new store
func NewPostStore(db *bun.DB) *PostStore {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &PostStore{Repository: repo, now: time.Now}
}

// CreatePost stores a new post written by authorID
func (s *PostStore) CreatePost(ctx context.Context, authorID, title, content string) (*Post, error) {
	author, err := uuid.Parse(authorID)
	if err != nil {
		return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{"id": authorID})
	}

	now := s.now().UTC()
	post, err := s.Repository.Create(ctx, &Post{
		ID:        uuid.New(),
		AuthorID:  author,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create post")
	}
	return post, nil
}

// GetByID retrieves a post by id. Unknown and malformed ids fail with
// ErrPostNotFound.
func (s *PostStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound.Clone().WithMetadata(map[string]any{"id": id})
	}

	post, err := s.Repository.GetByID(ctx, id, criteria...)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrPostNotFound.Clone().WithMetadata(map[string]any{"id": id})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load post")
	}
	return post, nil
}

// GetPost retrieves a post by id
func (s *PostStore) GetPost(ctx context.Context, id string) (*Post, error) {
	return s.GetByID(ctx, id)
}

// ListPosts returns posts newest first. A non blank query keeps posts
// whose title or content contains it, ignoring case.
func (s *PostStore) ListPosts(ctx context.Context, query string) ([]*Post, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at DESC", "id ASC")
		},
	}
	if query = strings.ToLower(strings.TrimSpace(query)); query != "" {
		like := "%" + query + "%"
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("LOWER(?TableAlias.title) LIKE ?", like).
					WhereOr("LOWER(?TableAlias.content) LIKE ?", like)
			})
		})
	}

	posts, _, err := s.Repository.List(ctx, criteria...)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list posts")
	}
	if posts == nil {
		posts = []*Post{}
	}
	return posts, nil
}

// UpdatePost changes the title and content of post id. Blank values keep
// the stored ones.
func (s *PostStore) UpdatePost(ctx context.Context, id, title, content string) (*Post, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != "" {
		post.Title = title
	}
	if content != "" {
		post.Content = content
	}
	post.UpdatedAt = s.now().UTC()

	if _, err := s.Repository.Update(ctx, post, repository.UpdateByID(id)); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update post").
			WithMetadata(map[string]any{"id": id})
	}
	return s.GetByID(ctx, id)
}

// DeletePost removes post id
func (s *PostStore) DeletePost(ctx context.Context, id string) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repository.Delete(ctx, post); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete post")
	}
	return nil
}
