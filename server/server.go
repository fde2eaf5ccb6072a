package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/middleware/gateware"
	"github.com/goliatone/go-authgate/repository"
	"github.com/goliatone/go-errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Accounts is the account store used by the HTTP handlers
type Accounts interface {
	GetAccount(ctx context.Context, id string) (*repository.Account, error)
	ListAccounts(ctx context.Context, enabledOnly bool) ([]*repository.Account, error)
	SetRole(ctx context.Context, id string, role authgate.Role) (*repository.Account, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*repository.Account, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) (*repository.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// Posts is the post store used by the HTTP handlers
type Posts interface {
	CreatePost(ctx context.Context, authorID, title, content string) (*repository.Post, error)
	GetPost(ctx context.Context, id string) (*repository.Post, error)
	ListPosts(ctx context.Context, query string) ([]*repository.Post, error)
	UpdatePost(ctx context.Context, id, title, content string) (*repository.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// Options wires the server
type Options struct {
	Accounts Accounts
	// Posts backs /api/posts, the routes are not mounted when nil
	Posts          Posts
	AccountService *authgate.AccountService
	Authenticator  gateware.Authenticator
	Policy         *authgate.Policy
	Responder      *authgate.Responder
	Metrics        *authgate.Metrics
	ActivitySink   authgate.ActivitySink
	// Gatherer backs /metrics, the endpoint is not mounted when nil
	Gatherer     prometheus.Gatherer
	ContextKey   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       authgate.Logger
}

// Server is the fiber application exposing the auth, profile and admin API
type Server struct {
	app       *fiber.App
	accounts  Accounts
	posts     Posts
	service   *authgate.AccountService
	responder *authgate.Responder
	activity  authgate.ActivitySink
	logger    authgate.Logger
}

// New builds the application. Accounts, AccountService, Authenticator and
// Policy are required.
func New(opts Options) (*Server, error) {
	if opts.Accounts == nil || opts.AccountService == nil || opts.Authenticator == nil || opts.Policy == nil {
		return nil, errors.New("server requires accounts, account service, authenticator and policy", errors.CategoryValidation)
	}

	if opts.Logger == nil {
		opts.Logger = authgate.NoopLogger()
	}
	if opts.Responder == nil {
		opts.Responder = authgate.NewResponder().WithLogger(opts.Logger)
	}

	s := &Server{
		accounts:  opts.Accounts,
		posts:     opts.Posts,
		service:   opts.AccountService,
		responder: opts.Responder,
		activity:  authgate.NormalizeActivitySink(opts.ActivitySink),
		logger:    opts.Logger,
	}

	// the policy matches paths case sensitively and the router must agree,
	// otherwise /api/ADMIN/users would route to the admin handlers under
	// the catch all rule
	s.app = fiber.New(fiber.Config{
		AppName:               "authgate",
		DisableStartupMessage: true,
		CaseSensitive:         true,
		StrictRouting:         true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(gateware.New(gateware.Config{
		Authenticator: opts.Authenticator,
		Policy:        opts.Policy,
		Responder:     opts.Responder,
		ContextKey:    opts.ContextKey,
		Metrics:       opts.Metrics,
		Logger:        opts.Logger,
	}))

	s.routes(opts.Gatherer)

	return s, nil
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.app.Get("/health", s.health)

	api := s.app.Group("/api")

	authAPI := api.Group("/auth")
	authAPI.Post("/register", s.register)
	authAPI.Post("/login", s.login)

	api.Get("/profiles", s.listProfiles)
	profiles := api.Group("/profiles")
	profiles.Get("/me", s.me)
	profiles.Get("/:id", s.getProfile)
	profiles.Put("/:id", s.updateProfile)

	admin := api.Group("/admin")
	admin.Get("/users", s.adminListUsers)
	admin.Get("/users/:id", s.adminGetUser)
	admin.Put("/users/:id/role", s.adminSetRole)
	admin.Put("/users/:id/enabled", s.adminSetEnabled)
	admin.Delete("/users/:id", s.adminDeleteUser)

	if s.posts != nil {
		api.Get("/posts", s.listPosts)
		api.Post("/posts", s.createPost)
		posts := api.Group("/posts")
		posts.Get("/:id", s.getPost)
		posts.Put("/:id", s.updatePost)
		posts.Delete("/:id", s.deletePost)

		admin.Get("/posts", s.adminListPosts)
		admin.Delete("/posts/:id", s.adminDeletePost)
	}

	if gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// App exposes the fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		body := s.responder.ForError(statusError(fe), c.Path())
		return c.Status(body.Status).JSON(body)
	}
	body := s.responder.ForError(err, c.Path())
	return c.Status(body.Status).JSON(body)
}

// statusError maps fiber routing errors (404, 405, bad bodies) to the
// error taxonomy used by the responder.
func statusError(fe *fiber.Error) error {
	switch fe.Code {
	case fiber.StatusNotFound:
		return errors.New(fe.Message, errors.CategoryNotFound).WithCode(errors.CodeNotFound)
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return errors.New(fe.Message, errors.CategoryBadInput).WithCode(errors.CodeBadRequest)
	case fiber.StatusUnauthorized:
		return authgate.ErrUnauthenticated.Clone()
	case fiber.StatusForbidden:
		return authgate.ErrForbidden.Clone()
	default:
		return errors.New(fe.Message, errors.CategoryInternal).WithCode(errors.CodeInternal)
	}
}
