package matcher

import (
	"fmt"
	"regexp"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// Regexp permits values whose entire raw form matches a pattern. The
// pattern is anchored at compile time; a partial match is not a match.
type Regexp struct {
	re *regexp.Regexp
}

// RegexpConfig configures a Regexp matcher.
type RegexpConfig struct {
	// Pattern is the regular expression matched against the whole value.
	Pattern string

	// IgnoreCase makes the match case-insensitive.
	IgnoreCase bool
}

// NewRegexp creates a regular expression matcher.
func NewRegexp(cfg RegexpConfig) (*Regexp, error) {
	re, err := attribute.CompileMatchPattern(cfg.Pattern, cfg.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("%w: regex matcher: %v", filter.ErrInvalidConfiguration, err)
	}
	return &Regexp{re: re}, nil
}

// Values implements filter.Matcher.
func (m *Regexp) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}
	var out []attribute.Value
	for _, v := range attr.Values() {
		if m.re.MatchString(v.Raw()) {
			out = append(out, v)
		}
	}
	return out, nil
}

// ScopeRegexp permits scoped values whose scope part matches a pattern.
type ScopeRegexp struct {
	re *regexp.Regexp
}

// NewScopeRegexp creates a scope regular expression matcher.
func NewScopeRegexp(cfg RegexpConfig) (*ScopeRegexp, error) {
	re, err := attribute.CompileMatchPattern(cfg.Pattern, cfg.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("%w: scope regex matcher: %v", filter.ErrInvalidConfiguration, err)
	}
	return &ScopeRegexp{re: re}, nil
}

// Values implements filter.Matcher.
func (m *ScopeRegexp) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}
	var out []attribute.Value
	for _, v := range attr.Values() {
		if scoped, ok := v.(attribute.ScopedValue); ok && m.re.MatchString(scoped.Scope()) {
			out = append(out, v)
		}
	}
	return out, nil
}
