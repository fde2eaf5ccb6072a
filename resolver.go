package authgate

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// PrincipalResolver maps a verified subject to the current account state.
// Every call is a fresh store lookup so role and enabled changes apply to
// the next request.
type PrincipalResolver struct {
	store  AccountStore
	logger Logger
}

// NewPrincipalResolver returns a resolver backed by store
func NewPrincipalResolver(store AccountStore) *PrincipalResolver {
	return &PrincipalResolver{
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger sets the logger
func (r *PrincipalResolver) WithLogger(logger Logger) *PrincipalResolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Resolve looks up subject. It returns ErrPrincipalNotFound when no
// account matches, including accounts deleted after the token was issued.
func (r *PrincipalResolver) Resolve(ctx context.Context, subject string) (*Principal, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrPrincipalNotFound.Clone()
	}

	principal, err := r.store.FindBySubject(ctx, subject)
	if err != nil {
		if errors.IsNotFound(err) || IsPrincipalNotFound(err) {
			return nil, ErrPrincipalNotFound.Clone()
		}
		r.logger.Error("principal resolver store lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve principal")
	}

	if principal == nil {
		return nil, ErrPrincipalNotFound.Clone()
	}

	return principal, nil
}
