// Package policy provides the tri-state requirement rules that decide
// whether an attribute filter policy applies to a request.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/project-kessel/attrfilter/internal/filter"
)

// Any always applies.
type Any struct{}

// NewAny creates a rule that is true for every request.
func NewAny() Any {
	return Any{}
}

// Matches implements filter.Rule.
func (Any) Matches(ctx *filter.Context) (filter.Tristate, error) {
	if ctx == nil {
		return filter.Fail, fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}
	return filter.True, nil
}

// field selects the context field a string rule compares.
type field int

const (
	fieldRequester field = iota
	fieldIssuer
	fieldPrincipal
)

func (f field) name() string {
	switch f {
	case fieldRequester:
		return "requester"
	case fieldIssuer:
		return "issuer"
	default:
		return "principal"
	}
}

func (f field) value(ctx *filter.Context) string {
	switch f {
	case fieldRequester:
		return ctx.Recipient()
	case fieldIssuer:
		return ctx.Issuer()
	default:
		return ctx.Principal()
	}
}

// stringRule compares one context field against a literal.
type stringRule struct {
	field      field
	value      string
	ignoreCase bool
}

func newStringRule(f field, value string, ignoreCase bool) (*stringRule, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: %s rule requires a value", filter.ErrInvalidConfiguration, f.name())
	}
	return &stringRule{field: f, value: value, ignoreCase: ignoreCase}, nil
}

// Matches implements filter.Rule. An empty context field means the rule has
// nothing to decide on and fails rather than reporting a definite false.
func (r *stringRule) Matches(ctx *filter.Context) (filter.Tristate, error) {
	if ctx == nil {
		return filter.Fail, fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}
	have := r.field.value(ctx)
	if have == "" {
		return filter.Fail, fmt.Errorf("%s is not set in the filter context", r.field.name())
	}
	matched := have == r.value
	if r.ignoreCase {
		matched = strings.EqualFold(have, r.value)
	}
	if matched {
		return filter.True, nil
	}
	return filter.False, nil
}

// regexRule compares one context field against a whole-string pattern.
type regexRule struct {
	field field
	re    *regexp.Regexp
}

func newRegexRule(f field, pattern string, ignoreCase bool) (*regexRule, error) {
	anchored := `\A(?:` + pattern + `)\z`
	if ignoreCase {
		anchored = `(?i)` + anchored
	}
	if pattern == "" {
		return nil, fmt.Errorf("%w: %s regex rule requires a pattern", filter.ErrInvalidConfiguration, f.name())
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, fmt.Errorf("%w: %s regex rule: %v", filter.ErrInvalidConfiguration, f.name(), err)
	}
	return &regexRule{field: f, re: re}, nil
}

// Matches implements filter.Rule.
func (r *regexRule) Matches(ctx *filter.Context) (filter.Tristate, error) {
	if ctx == nil {
		return filter.Fail, fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}
	have := r.field.value(ctx)
	if have == "" {
		return filter.Fail, fmt.Errorf("%s is not set in the filter context", r.field.name())
	}
	if r.re.MatchString(have) {
		return filter.True, nil
	}
	return filter.False, nil
}

// NewRequester creates a rule matching the recipient entity id literally.
func NewRequester(value string, ignoreCase bool) (filter.Rule, error) {
	return newStringRule(fieldRequester, value, ignoreCase)
}

// NewRequesterRegexp creates a rule matching the recipient entity id
// against a whole-string pattern.
func NewRequesterRegexp(pattern string, ignoreCase bool) (filter.Rule, error) {
	return newRegexRule(fieldRequester, pattern, ignoreCase)
}

// NewIssuer creates a rule matching the issuer entity id literally.
func NewIssuer(value string, ignoreCase bool) (filter.Rule, error) {
	return newStringRule(fieldIssuer, value, ignoreCase)
}

// NewIssuerRegexp creates a rule matching the issuer entity id against a
// whole-string pattern.
func NewIssuerRegexp(pattern string, ignoreCase bool) (filter.Rule, error) {
	return newRegexRule(fieldIssuer, pattern, ignoreCase)
}

// NewPrincipal creates a rule matching the principal name literally.
func NewPrincipal(value string, ignoreCase bool) (filter.Rule, error) {
	return newStringRule(fieldPrincipal, value, ignoreCase)
}

// NewPrincipalRegexp creates a rule matching the principal name against a
// whole-string pattern.
func NewPrincipalRegexp(pattern string, ignoreCase bool) (filter.Rule, error) {
	return newRegexRule(fieldPrincipal, pattern, ignoreCase)
}
