package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/middleware/gateware"
	"github.com/goliatone/go-authgate/repository"
	"github.com/goliatone/go-errors"
)

// PostView is the public representation of a post
type PostView struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PostCreateRequest is the payload of POST /api/posts
type PostCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate will run validation rules
func (r PostCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Content, validation.Required),
	)
}

// PostUpdateRequest is the payload of PUT /api/posts/:id. Blank fields
// are left unchanged.
type PostUpdateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate will run validation rules
func (r PostUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 150)),
	)
}

func (s *Server) listPosts(c *fiber.Ctx) error {
	posts, err := s.posts.ListPosts(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(s.postViews(c.UserContext(), posts))
}

func (s *Server) getPost(c *fiber.Ctx) error {
	post, err := s.posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(s.postView(c.UserContext(), post, nil))
}

func (s *Server) createPost(c *fiber.Ctx) error {
	author, ok := gateware.PrincipalFromCtx(c)
	if !ok {
		return authgate.ErrUnauthenticated.Clone()
	}

	payload := new(PostCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return malformedBody(err)
	}
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Content = strings.TrimSpace(payload.Content)
	if err := payload.Validate(); err != nil {
		return authgate.NewValidationError(err)
	}

	post, err := s.posts.CreatePost(c.UserContext(), author.ID, payload.Title, payload.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(s.postView(c.UserContext(), post, nil))
}

func (s *Server) updatePost(c *fiber.Ctx) error {
	post, err := s.posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := gateware.RequireOwnerOrAdmin(c, post.AuthorID.String()); err != nil {
		return err
	}

	payload := new(PostUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return malformedBody(err)
	}
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Content = strings.TrimSpace(payload.Content)
	if payload.Title == "" && payload.Content == "" {
		return errors.New("no fields to update", errors.CategoryBadInput).
			WithTextCode(authgate.TextCodeInvalidInput).
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return authgate.NewValidationError(err)
	}

	post, err = s.posts.UpdatePost(c.UserContext(), post.ID.String(), payload.Title, payload.Content)
	if err != nil {
		return err
	}
	return c.JSON(s.postView(c.UserContext(), post, nil))
}

func (s *Server) deletePost(c *fiber.Ctx) error {
	post, err := s.posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := gateware.RequireOwnerOrAdmin(c, post.AuthorID.String()); err != nil {
		return err
	}

	if err := s.posts.DeletePost(c.UserContext(), post.ID.String()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) adminListPosts(c *fiber.Ctx) error {
	posts, err := s.posts.ListPosts(c.UserContext(), "")
	if err != nil {
		return err
	}
	return c.JSON(s.postViews(c.UserContext(), posts))
}

func (s *Server) adminDeletePost(c *fiber.Ctx) error {
	post, err := s.posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(c.UserContext(), post.ID.String()); err != nil {
		return err
	}

	s.audit(c, authgate.ActivityEventPostDeleted, post.AuthorID.String(), map[string]any{
		"post_id": post.ID.String(),
	})
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) postViews(ctx context.Context, posts []*repository.Post) []PostView {
	usernames := map[string]string{}
	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.postView(ctx, p, usernames))
	}
	return out
}

// postView resolves the author username, an author that no longer exists
// leaves it blank
func (s *Server) postView(ctx context.Context, p *repository.Post, usernames map[string]string) PostView {
	authorID := p.AuthorID.String()

	username, ok := usernames[authorID]
	if !ok {
		if author, err := s.accounts.GetAccount(ctx, authorID); err == nil {
			username = author.Username
		}
		if usernames != nil {
			usernames[authorID] = username
		}
	}

	return PostView{
		ID:             p.ID.String(),
		AuthorID:       authorID,
		AuthorUsername: username,
		Title:          p.Title,
		Content:        p.Content,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
