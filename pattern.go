package authgate

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/goliatone/go-errors"
)

// pathPattern matches request paths against a route pattern. A single
// star or a {id} / :id variable matches one path segment. A double star
// matches any number of segments, zero when it is the last segment.
// Matching is case sensitive.
type pathPattern struct {
	raw    string
	g      glob.Glob
	prefix string // set when the pattern ends with /**
}

func compilePathPattern(pattern string) (*pathPattern, error) {
	raw := pattern
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || !strings.HasPrefix(pattern, "/") {
		return nil, errors.New("path pattern must start with /", errors.CategoryValidation).
			WithTextCode(TextCodeInvalidRule).
			WithMetadata(map[string]any{"pattern": raw})
	}

	segments := strings.Split(trimTrailingSlash(pattern), "/")
	for i, seg := range segments {
		if isVariableSegment(seg) {
			segments[i] = "*"
		}
	}
	normalized := strings.Join(segments, "/")
	if normalized == "" {
		normalized = "/"
	}

	g, err := glob.Compile(normalized, '/')
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid path pattern").
			WithTextCode(TextCodeInvalidRule).
			WithMetadata(map[string]any{"pattern": raw})
	}

	p := &pathPattern{raw: raw, g: g}
	if strings.HasSuffix(normalized, "/**") {
		p.prefix = strings.TrimSuffix(normalized, "/**")
		if p.prefix == "" {
			p.prefix = "/"
		}
	}
	return p, nil
}

func (p *pathPattern) Match(path string) bool {
	path = trimTrailingSlash(path)
	if path == "" {
		path = "/"
	}
	if p.prefix != "" && path == p.prefix {
		return true
	}
	return p.g.Match(path)
}

func (p *pathPattern) String() string {
	return p.raw
}

func isVariableSegment(seg string) bool {
	if strings.HasPrefix(seg, ":") && len(seg) > 1 {
		return true
	}
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2
}

func trimTrailingSlash(s string) string {
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		return strings.TrimRight(s, "/")
	}
	return s
}

// methodMatches reports whether method satisfies pattern. An empty
// pattern or "*" matches every method, and a GET rule also covers HEAD.
func methodMatches(pattern, method string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	if strings.EqualFold(pattern, method) {
		return true
	}
	return strings.EqualFold(pattern, "GET") && strings.EqualFold(method, "HEAD")
}
