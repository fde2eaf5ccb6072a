package gateware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authgate"
)

// Authenticator turns the raw Authorization header into a security context
type Authenticator interface {
	Authenticate(ctx context.Context, rawCredential string) (authgate.SecurityContext, error)
}

// Authorizer decides whether a request may reach its handler
type Authorizer interface {
	Authorize(method, path string, sc authgate.SecurityContext) authgate.Decision
}

// DenyHandler writes the response for a deny decision
type DenyHandler func(c *fiber.Ctx, d authgate.Decision) error

// ErrorHandler writes the response for an authentication error
type ErrorHandler func(c *fiber.Ctx, err error) error

type Config struct {
	// Filter skips the middleware when it returns true
	Filter        func(*fiber.Ctx) bool
	Authenticator Authenticator
	Policy        Authorizer
	Responder     *authgate.Responder
	DenyHandler   DenyHandler
	ErrorHandler  ErrorHandler
	// ContextKey is the fiber locals key holding the SecurityContext
	ContextKey string
	Metrics    *authgate.Metrics
	Logger     authgate.Logger
}

// New binds authentication and route authorization to a fiber app. The
// security context is stored in the locals under ContextKey and in the
// user context, and both are cleared once the handler chain returns.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		parent := c.UserContext()

		sc, err := cfg.Authenticator.Authenticate(parent, c.Get(fiber.HeaderAuthorization))
		cfg.Metrics.RecordAuthentication(sc, err)
		if err != nil {
			cfg.Logger.Info("request rejected by authenticator",
				"method", c.Method(),
				"path", c.Path(),
			)
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, sc)
		c.SetUserContext(authgate.WithSecurityContext(parent, sc))
		defer func() {
			c.Locals(cfg.ContextKey, nil)
			c.SetUserContext(parent)
		}()

		decision := cfg.Policy.Authorize(c.Method(), c.Path(), sc)
		cfg.Metrics.RecordDecision(decision)
		if decision != authgate.Allow {
			cfg.Logger.Debug("request denied by policy",
				"method", c.Method(),
				"path", c.Path(),
				"decision", decision.String(),
			)
			return cfg.DenyHandler(c, decision)
		}

		return c.Next()
	}
}

// GetDefaultConfig fills the optional fields of the first config
func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Authenticator == nil {
		panic("AUTHGATE: gateware configuration: Authenticator is required.")
	}

	if cfg.Policy == nil {
		panic("AUTHGATE: gateware configuration: Policy is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "security"
	}

	if cfg.Logger == nil {
		cfg.Logger = authgate.NoopLogger()
	}

	if cfg.Responder == nil {
		cfg.Responder = authgate.NewResponder().WithLogger(cfg.Logger)
	}

	if cfg.DenyHandler == nil {
		responder := cfg.Responder
		cfg.DenyHandler = func(c *fiber.Ctx, d authgate.Decision) error {
			body := responder.ForDecision(d, c.Path())
			return c.Status(body.Status).JSON(body)
		}
	}

	if cfg.ErrorHandler == nil {
		responder := cfg.Responder
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			body := responder.ForError(err, c.Path())
			return c.Status(body.Status).JSON(body)
		}
	}

	return cfg
}

// SecurityContextFromCtx returns the security context of the request,
// anonymous outside of the middleware.
func SecurityContextFromCtx(c *fiber.Ctx) authgate.SecurityContext {
	return authgate.SecurityContextFrom(c.UserContext())
}

// PrincipalFromCtx returns the authenticated principal, if any
func PrincipalFromCtx(c *fiber.Ctx) (*authgate.Principal, bool) {
	return SecurityContextFromCtx(c).Principal()
}

// RequireOwnerOrAdmin returns nil when the current principal owns
// ownerID or is an admin. Otherwise it returns authgate.ErrUnauthenticated
// or authgate.ErrForbidden.
func RequireOwnerOrAdmin(c *fiber.Ctx, ownerID string) error {
	return authgate.AuthorizeOwner(SecurityContextFromCtx(c), ownerID).Err()
}
