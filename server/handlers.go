package server

import (
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

// PublicProfile is the anonymous view of an account
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Country     string `json:"country"`
}

// Profile is the owner and admin view of an account
type Profile struct {
	PublicProfile
	Email     string        `json:"email"`
	Role      authgate.Role `json:"role"`
	Enabled   bool          `json:"enabled"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func publicProfile(a *repository.Account) PublicProfile {
	return PublicProfile{
		ID:          a.ID.String(),
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Country:     a.Country,
	}
}

func fullProfile(a *repository.Account) Profile {
	return Profile{
		PublicProfile: publicProfile(a),
		Email:         a.Email,
		Role:          a.Role,
		Enabled:       a.Enabled,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ProfileUpdateRequest is the payload of PUT /api/profiles/:id
type ProfileUpdateRequest struct {
	DisplayName string `json:"displayName"`
}

// Validate will run validation rules
func (r ProfileUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 100)),
	)
}

// RoleUpdateRequest is the payload of PUT /api/admin/users/:id/role
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// EnabledUpdateRequest is the payload of PUT /api/admin/users/:id/enabled
type EnabledUpdateRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) register(c *fiber.Ctx) error {
	payload := new(authgate.RegisterRequest)
	if err := c.BodyParser(payload); err != nil {
		return malformedBody(err)
	}

	resp, err := s.service.Register(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(resp)
}

func (s *Server) login(c *fiber.Ctx) error {
	payload := new(authgate.LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return malformedBody(err)
	}

	resp, err := s.service.Login(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func (s *Server) listProfiles(c *fiber.Ctx) error {
	accounts, err := s.accounts.ListAccounts(c.UserContext(), true)
	if err != nil {
		return err
	}

	out := make([]PublicProfile, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, publicProfile(a))
	}
	return c.JSON(out)
}

func (s *Server) me(c *fiber.Ctx) error {
	principal, ok := gateware.PrincipalFromCtx(c)
	if !ok {
		return authgate.ErrUnauthenticated.Clone()
	}

	account, err := s.accounts.GetAccount(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(fullProfile(account))
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	account, err := s.accounts.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	viewer, _ := gateware.PrincipalFromCtx(c)
	if !account.Enabled && !viewer.IsAdmin() {
		return repository.ErrAccountNotFound.Clone()
	}

	return c.JSON(publicProfile(account))
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := gateware.RequireOwnerOrAdmin(c, id); err != nil {
		return err
	}

	payload := new(ProfileUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return malformedBody(err)
	}
	payload.DisplayName = strings.TrimSpace(payload.DisplayName)
	if err := payload.Validate(); err != nil {
		return authgate.NewValidationError(err)
	}

	account, err := s.accounts.UpdateDisplayName(c.UserContext(), id, payload.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(fullProfile(account))
}

func (s *Server) adminListUsers(c *fiber.Ctx) error {
	accounts, err := s.accounts.ListAccounts(c.UserContext(), false)
	if err != nil {
		return err
	}

	out := make([]Profile, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, fullProfile(a))
	}
	return c.JSON(out)
}

func (s *Server) adminGetUser(c *fiber.Ctx) error {
	account, err := s.accounts.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fullProfile(account))
}

func (s *Server) adminSetRole(c *fiber.Ctx) error {
	payload := new(RoleUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return malformedBody(err)
	}

	role, err := authgate.ParseRole(payload.Role)
	if err != nil {
		return err
	}

	account, err := s.accounts.SetRole(c.UserContext(), c.Params("id"), role)
	if err != nil {
		return err
	}

	s.audit(c, authgate.ActivityEventAccountRoleChanged, account.ID.String(), map[string]any{
		"role": role.String(),
	})
	return c.JSON(fullProfile(account))
}

func (s *Server) adminSetEnabled(c *fiber.Ctx) error {
	payload := new(EnabledUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return malformedBody(err)
	}
	if payload.Enabled == nil {
		return errors.New("enabled is required", errors.CategoryValidation).
			WithTextCode(authgate.TextCodeInvalidInput).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"enabled": "cannot be blank"})
	}

	account, err := s.accounts.SetEnabled(c.UserContext(), c.Params("id"), *payload.Enabled)
	if err != nil {
		return err
	}

	s.audit(c, authgate.ActivityEventAccountEnabledSet, account.ID.String(), map[string]any{
		"enabled": account.Enabled,
	})
	return c.JSON(fullProfile(account))
}

func (s *Server) adminDeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.accounts.DeleteAccount(c.UserContext(), id); err != nil {
		return err
	}

	s.audit(c, authgate.ActivityEventAccountDeleted, id, nil)
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) audit(c *fiber.Ctx, event authgate.ActivityEventType, accountID string, metadata map[string]any) {
	actorID := gateware.SecurityContextFromCtx(c).PrincipalID()
	s.logger.Info("admin change",
		"event", string(event),
		"account_id", accountID,
		"actor_id", actorID,
	)
	authgate.RecordActivity(c.UserContext(), s.activity, s.logger, authgate.ActivityEvent{
		EventType: event,
		ActorID:   actorID,
		AccountID: accountID,
		Metadata:  metadata,
	})
}

func malformedBody(err error) error {
	return errors.Wrap(err, errors.CategoryBadInput, "malformed JSON request or missing body").
		WithCode(errors.CodeBadRequest)
}
