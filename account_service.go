package authgate

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

var countryCodeRegexp = regexp.MustCompile(`^[A-Z]{2}$`)

const passwordSymbols = "@$!%*?&"

// TokenIssuer issues tokens for a subject
type TokenIssuer interface {
	Issue(subject string) (Token, error)
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Country  string `json:"country"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(5, 100)),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 128),
			validation.By(validatePasswordStrength),
		),
		validation.Field(&r.Country, validation.Required, validation.Match(countryCodeRegexp)),
	)
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthResponse is returned by a successful register or login
type AuthResponse struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
}

// AccountService registers accounts and exchanges credentials for tokens
type AccountService struct {
	registry  AccountRegistry
	tokens    TokenIssuer
	tokenType string
	hashCost  int
	logger    Logger
	metrics   *Metrics
	activity  ActivitySink
}

// NewAccountService returns a service backed by registry and tokens
func NewAccountService(registry AccountRegistry, tokens TokenIssuer) *AccountService {
	return &AccountService{
		registry:  registry,
		tokens:    tokens,
		tokenType: DefaultAuthScheme,
		hashCost:  passwordHashCost(),
		logger:    defLogger{},
		activity:  noopActivitySink{},
	}
}

// WithHashCost sets the bcrypt cost used for new passwords
func (s *AccountService) WithHashCost(cost int) *AccountService {
	if cost > 0 {
		s.hashCost = cost
	}
	return s
}

// WithTokenType sets the tokenType reported to clients
func (s *AccountService) WithTokenType(tokenType string) *AccountService {
	if tokenType = strings.TrimSpace(tokenType); tokenType != "" {
		s.tokenType = tokenType
	}
	return s
}

// WithLogger sets the logger
func (s *AccountService) WithLogger(logger Logger) *AccountService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink sets the audit sink for register and login events
func (s *AccountService) WithActivitySink(sink ActivitySink) *AccountService {
	s.activity = NormalizeActivitySink(sink)
	return s
}

// WithMetrics sets the metrics recorder
func (s *AccountService) WithMetrics(m *Metrics) *AccountService {
	s.metrics = m
	return s
}

// Register creates an enabled USER account and returns a token for it.
// A taken email or username fails with ErrAccountExists.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (resp AuthResponse, err error) {
	defer func() { s.metrics.RecordLogin("register", err) }()

	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if err = req.Validate(); err != nil {
		return AuthResponse{}, NewValidationError(err)
	}

	exists, err := s.registry.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return AuthResponse{}, errors.Wrap(err, errors.CategoryInternal, "failed to check account")
	}
	if exists {
		return AuthResponse{}, ErrAccountExists.Clone()
	}

	hash, err := HashPasswordWithCost(req.Password, s.hashCost)
	if err != nil {
		return AuthResponse{}, err
	}

	principal, err := s.registry.CreateAccount(ctx, NewAccount{
		Email:        req.Email,
		Username:     req.Username,
		DisplayName:  req.Username,
		Country:      req.Country,
		PasswordHash: hash,
		Role:         RoleUser,
		Enabled:      true,
	})
	if err != nil {
		if IsAccountExists(err) {
			return AuthResponse{}, err
		}
		return AuthResponse{}, errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	s.logger.Info("account registered", "principal_id", principal.ID)
	RecordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventAccountRegistered,
		AccountID: principal.ID,
		Metadata:  map[string]any{"username": req.Username},
	})

	return s.respond(principal, req.Username)
}

// Login verifies email and password. Unknown email and wrong password
// both fail with ErrInvalidCredentials; a disabled account fails with
// ErrAccountDisabled once the password matched.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (resp AuthResponse, err error) {
	defer func() { s.metrics.RecordLogin("login", err) }()

	req.Email = normalizeEmail(req.Email)

	if err = req.Validate(); err != nil {
		return AuthResponse{}, NewValidationError(err)
	}

	creds, err := s.registry.FindCredentials(ctx, req.Email)
	if err != nil {
		if errors.IsNotFound(err) || IsPrincipalNotFound(err) {
			s.logger.Debug("login for unknown account")
			s.loginFailed(ctx, "", "unknown_account")
			return AuthResponse{}, ErrInvalidCredentials.Clone()
		}
		return AuthResponse{}, errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}
	if creds == nil || creds.Principal == nil {
		return AuthResponse{}, ErrInvalidCredentials.Clone()
	}

	if err = ComparePasswordAndHash(req.Password, creds.PasswordHash); err != nil {
		s.logger.Debug("login password mismatch", "principal_id", creds.Principal.ID)
		s.loginFailed(ctx, creds.Principal.ID, "password_mismatch")
		return AuthResponse{}, err
	}

	if !creds.Principal.Enabled {
		s.logger.Info("login rejected for disabled account", "principal_id", creds.Principal.ID)
		s.loginFailed(ctx, creds.Principal.ID, "account_disabled")
		return AuthResponse{}, ErrAccountDisabled.Clone()
	}

	resp, err = s.respond(creds.Principal, creds.Username)
	if err != nil {
		return AuthResponse{}, err
	}

	RecordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		AccountID: creds.Principal.ID,
	})
	return resp, nil
}

func (s *AccountService) loginFailed(ctx context.Context, accountID, reason string) {
	RecordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		AccountID: accountID,
		Metadata:  map[string]any{"reason": reason},
	})
}

func (s *AccountService) respond(principal *Principal, username string) (AuthResponse, error) {
	token, err := s.tokens.Issue(principal.Subject)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		UserID:    principal.ID,
		Username:  username,
		Email:     principal.Subject,
		Token:     token.Value,
		TokenType: s.tokenType,
		ExpiresIn: token.TTL().Milliseconds(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePasswordStrength(value interface{}) error {
	password, _ := value.(string)
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
		default:
			return errors.New("must only contain letters, digits and "+passwordSymbols, errors.CategoryValidation)
		}
	}
	if !lower || !upper || !digit {
		return errors.New("must contain upper case, lower case letters and digits", errors.CategoryValidation)
	}
	return nil
}

// NewValidationError converts ozzo validation errors into an
// INVALID_INPUT error carrying one metadata entry per field.
func NewValidationError(err error) error {
	fields := map[string]any{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
	}
	return errors.New(err.Error(), errors.CategoryValidation).
		WithTextCode(TextCodeInvalidInput).
		WithCode(errors.CodeBadRequest).
		WithMetadata(fields)
}
