package authgate

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ErrorBody is the JSON document written for every rejected request.
// Fields is only set for rejected payloads.
type ErrorBody struct {
	Timestamp time.Time      `json:"timestamp"`
	Status    int            `json:"status"`
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Path      string         `json:"path"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Responder builds error bodies. Security failures always carry the fixed
// status text as message so malformed, expired and unresolvable
// credentials look the same from the outside.
type Responder struct {
	now    func() time.Time
	logger Logger
}

// NewResponder returns a responder using time.Now
func NewResponder() *Responder {
	return &Responder{
		now:    time.Now,
		logger: defLogger{},
	}
}

// WithClock overrides the timestamp source
func (r *Responder) WithClock(now func() time.Time) *Responder {
	if now != nil {
		r.now = now
	}
	return r
}

// WithLogger sets the logger
func (r *Responder) WithLogger(logger Logger) *Responder {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// ForDecision returns the body for a deny decision. Allow has no body;
// passing it yields a Forbidden body.
func (r *Responder) ForDecision(d Decision, path string) ErrorBody {
	switch d {
	case DenyUnauthenticated:
		return r.body(http.StatusUnauthorized, "", path)
	default:
		return r.body(http.StatusForbidden, "", path)
	}
}

// ForError maps err to a body. Authentication errors collapse to 401,
// disabled accounts and authorization errors to 403. Input, conflict and
// not found errors keep their message. Anything else is a 500 with the
// generic status text.
func (r *Responder) ForError(err error, path string) ErrorBody {
	if err == nil {
		return r.body(http.StatusInternalServerError, "", path)
	}

	if IsAccountDisabled(err) {
		return r.body(http.StatusForbidden, "", path)
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		r.logger.Error("unexpected error", "error", err, "path", path)
		return r.body(http.StatusInternalServerError, "", path)
	}

	r.logger.Debug("responder error",
		"text_code", richErr.TextCode,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth:
		return r.body(http.StatusUnauthorized, "", path)
	case errors.CategoryAuthz:
		return r.body(http.StatusForbidden, "", path)
	case errors.CategoryBadInput, errors.CategoryValidation:
		body := r.body(http.StatusBadRequest, richErr.Message, path)
		if richErr.TextCode == TextCodeInvalidInput && len(richErr.Metadata) > 0 {
			body.Fields = richErr.Metadata
		}
		return body
	case errors.CategoryNotFound:
		return r.body(http.StatusNotFound, richErr.Message, path)
	case errors.CategoryConflict:
		return r.body(http.StatusConflict, richErr.Message, path)
	default:
		r.logger.Error("internal error", "error", richErr.Message, "path", path)
		return r.body(http.StatusInternalServerError, "", path)
	}
}

func (r *Responder) body(status int, message, path string) ErrorBody {
	text := http.StatusText(status)
	if message == "" {
		message = text
	}
	return ErrorBody{
		Timestamp: r.now().UTC(),
		Status:    status,
		Error:     text,
		Message:   message,
		Path:      path,
	}
}
