package repository

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"

// ErrAccountNotFound no account matches the lookup
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// Account is the Bun model for accounts. The email is the token subject.
type Account struct {
	bun.BaseModel `bun:"table:accounts"`

	ID           uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Email        string        `bun:"email,notnull,unique" json:"email"`
	Username     string        `bun:"username,notnull,unique" json:"username"`
	DisplayName  string        `bun:"display_name" json:"displayName"`
	Country      string        `bun:"country" json:"country"`
	PasswordHash string        `bun:"password_hash,notnull" json:"-"`
	Role         authgate.Role `bun:"role,notnull" json:"role"`
	Enabled      bool          `bun:"enabled,notnull" json:"enabled"`
	CreatedAt    time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Principal is the gateway view of the account
func (a *Account) Principal() *authgate.Principal {
	return &authgate.Principal{
		ID:          a.ID.String(),
		Subject:     a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		Enabled:     a.Enabled,
	}
}

// AccountStore implements authgate.AccountRegistry on top of the generic
// account repository, plus the management operations used by the admin API.
type AccountStore struct {
	repository.Repository[*Account]
	db  *bun.DB
	now func() time.Time
}

var (
	_ authgate.AccountRegistry        = (*AccountStore)(nil)
	_ repository.Repository[*Account] = (*AccountStore)(nil)
)

// NewAccountStore creates a new store
func NewAccountStore(db *bun.DB) *AccountStore {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &AccountStore{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
}

// FindBySubject implements authgate.AccountStore
func (s *AccountStore) FindBySubject(ctx context.Context, subject string) (*authgate.Principal, error) {
	account, err := s.GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	return account.Principal(), nil
}

// FindCredentials implements authgate.AccountRegistry
func (s *AccountStore) FindCredentials(ctx context.Context, subject string) (*authgate.Credentials, error) {
	account, err := s.GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &authgate.Credentials{
		Principal:    account.Principal(),
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
	}, nil
}

// ExistsByEmailOrUsername implements authgate.AccountRegistry
func (s *AccountStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*Account)(nil)).
		Where("email = ? OR username = ?", email, username).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check account existence")
	}
	return exists, nil
}

// CreateAccount implements authgate.AccountRegistry
func (s *AccountStore) CreateAccount(ctx context.Context, na authgate.NewAccount) (*authgate.Principal, error) {
	role := na.Role
	if role == "" {
		role = authgate.RoleUser
	}
	if !role.IsValid() {
		return nil, authgate.ErrInvalidRole.Clone().WithMetadata(map[string]any{"role": role.String()})
	}

	exists, err := s.ExistsByEmailOrUsername(ctx, na.Email, na.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, authgate.ErrAccountExists.Clone()
	}

	now := s.now().UTC()
	account, err := s.Repository.Create(ctx, &Account{
		ID:           uuid.New(),
		Email:        na.Email,
		Username:     na.Username,
		DisplayName:  na.DisplayName,
		Country:      na.Country,
		PasswordHash: na.PasswordHash,
		Role:         role,
		Enabled:      na.Enabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, authgate.ErrAccountExists.Clone()
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	return account.Principal(), nil
}

// GetByEmail retrieves an account by email
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	account := new(Account)
	err := s.db.NewSelect().
		Model(account).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, lookupError(err, "email", email)
	}
	return account, nil
}

// GetByID retrieves an account by id. Unknown and malformed ids fail with
// ErrAccountNotFound.
func (s *AccountStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{"id": id})
	}

	account, err := s.Repository.GetByID(ctx, id, criteria...)
	if err != nil {
		return nil, lookupError(err, "id", id)
	}
	return account, nil
}

// GetAccount retrieves an account by id
func (s *AccountStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.GetByID(ctx, id)
}

// ListAccounts returns accounts ordered by creation time. With enabledOnly
// set, disabled accounts are left out.
func (s *AccountStore) ListAccounts(ctx context.Context, enabledOnly bool) ([]*Account, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC", "email ASC")
		},
	}
	if enabledOnly {
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.enabled = ?", true)
		})
	}

	accounts, _, err := s.Repository.List(ctx, criteria...)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list accounts")
	}
	if accounts == nil {
		accounts = []*Account{}
	}
	return accounts, nil
}

// SetRole changes the role of account id
func (s *AccountStore) SetRole(ctx context.Context, id string, role authgate.Role) (*Account, error) {
	if !role.IsValid() {
		return nil, authgate.ErrInvalidRole.Clone().WithMetadata(map[string]any{"role": role.String()})
	}
	return s.modify(ctx, id, func(a *Account) { a.Role = role })
}

// SetEnabled enables or disables account id
func (s *AccountStore) SetEnabled(ctx context.Context, id string, enabled bool) (*Account, error) {
	return s.modify(ctx, id, func(a *Account) { a.Enabled = enabled })
}

// UpdateDisplayName changes the display name of account id
func (s *AccountStore) UpdateDisplayName(ctx context.Context, id, displayName string) (*Account, error) {
	return s.modify(ctx, id, func(a *Account) { a.DisplayName = displayName })
}

// DeleteAccount removes account id
func (s *AccountStore) DeleteAccount(ctx context.Context, id string) error {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repository.Delete(ctx, account); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete account")
	}
	return nil
}

func (s *AccountStore) modify(ctx context.Context, id string, change func(*Account)) (*Account, error) {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	change(account)
	account.UpdatedAt = s.now().UTC()

	if _, err := s.Repository.Update(ctx, account, repository.UpdateByID(id)); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update account").
			WithMetadata(map[string]any{"id": id})
	}

	return s.GetByID(ctx, id)
}

func lookupError(err error, field, value string) error {
	if repository.IsRecordNotFound(err) {
		return ErrAccountNotFound.Clone().WithMetadata(map[string]any{field: value})
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to load account")
}

// isUniqueViolation walks the error chain looking for the driver message
func isUniqueViolation(err error) bool {
	for err != nil {
		msg := err.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value") {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
