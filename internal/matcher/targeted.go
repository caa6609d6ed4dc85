package matcher

import (
	"fmt"
	"strings"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// Targeted evaluates a value predicate against a named attribute's raw
// resolved values from the context's prefiltered map instead of the
// attribute passed in. The result is all or nothing: if any value of the
// target attribute satisfies the predicate, every value of the passed-in
// attribute is permitted; otherwise none are.
//
// Without a target attribute id the matcher degrades to a plain per-value
// predicate over whichever attribute it is given.
type Targeted struct {
	attributeID string
	predicate   ValuePredicate
}

// TargetedConfig configures a Targeted matcher.
type TargetedConfig struct {
	// AttributeID names the attribute the predicate is evaluated against.
	// Empty means "the attribute passed in".
	AttributeID string

	// Predicate decides whether a value matches.
	Predicate ValuePredicate
}

// NewTargeted creates a targeted matcher.
func NewTargeted(cfg TargetedConfig) (*Targeted, error) {
	if cfg.Predicate == nil {
		return nil, fmt.Errorf("%w: targeted matcher requires a predicate", filter.ErrInvalidConfiguration)
	}
	return &Targeted{attributeID: cfg.AttributeID, predicate: cfg.Predicate}, nil
}

// NewTargetedString creates a targeted matcher with a literal predicate.
func NewTargetedString(attributeID, value string, ignoreCase bool) (*Targeted, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: targeted string matcher requires a value", filter.ErrInvalidConfiguration)
	}
	pred := func(v attribute.Value) bool {
		if ignoreCase {
			return strings.EqualFold(v.Raw(), value)
		}
		return v.Raw() == value
	}
	return NewTargeted(TargetedConfig{AttributeID: attributeID, Predicate: pred})
}

// NewTargetedRegexp creates a targeted matcher with a whole-string regular
// expression predicate.
func NewTargetedRegexp(attributeID, pattern string, ignoreCase bool) (*Targeted, error) {
	re, err := attribute.CompileMatchPattern(pattern, ignoreCase)
	if err != nil {
		return nil, fmt.Errorf("%w: targeted regex matcher: %v", filter.ErrInvalidConfiguration, err)
	}
	pred := func(v attribute.Value) bool {
		return re.MatchString(v.Raw())
	}
	return NewTargeted(TargetedConfig{AttributeID: attributeID, Predicate: pred})
}

// Values implements filter.Matcher.
func (m *Targeted) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}

	if m.attributeID == "" {
		var out []attribute.Value
		for _, v := range attr.Values() {
			if m.predicate(v) {
				out = append(out, v)
			}
		}
		return out, nil
	}

	target, ok := ctx.Attribute(m.attributeID)
	if !ok {
		// Absent target attribute: nothing to decide on, permit nothing.
		return nil, nil
	}
	for _, v := range target.Values() {
		if m.predicate(v) {
			return attr.Values(), nil
		}
	}
	return nil, nil
}
