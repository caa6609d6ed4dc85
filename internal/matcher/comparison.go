package matcher

import (
	"fmt"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// ValuePredicate decides whether a single attribute value matches.
type ValuePredicate func(v attribute.Value) bool

// Comparison evaluates either a per-value predicate or a context-level
// policy rule — exactly one of the two. With a value predicate it permits
// the values the predicate accepts. With a policy rule the result is all or
// nothing: every value when the rule evaluates true, none otherwise.
type Comparison struct {
	valuePredicate ValuePredicate
	policyRule     filter.Rule
}

// ComparisonConfig configures a Comparison matcher. Exactly one of
// ValuePredicate and PolicyRule must be set.
type ComparisonConfig struct {
	ValuePredicate ValuePredicate
	PolicyRule     filter.Rule
}

// NewComparison creates a comparison matcher.
func NewComparison(cfg ComparisonConfig) (*Comparison, error) {
	if cfg.ValuePredicate == nil && cfg.PolicyRule == nil {
		return nil, fmt.Errorf("%w: comparison matcher requires a value predicate or a policy rule", filter.ErrInvalidConfiguration)
	}
	if cfg.ValuePredicate != nil && cfg.PolicyRule != nil {
		return nil, fmt.Errorf("%w: comparison matcher accepts a value predicate or a policy rule, not both", filter.ErrInvalidConfiguration)
	}
	return &Comparison{valuePredicate: cfg.ValuePredicate, policyRule: cfg.PolicyRule}, nil
}

// Values implements filter.Matcher.
func (m *Comparison) Values(attr *attribute.Attribute, ctx *filter.Context) ([]attribute.Value, error) {
	if err := checkInputs(attr, ctx); err != nil {
		return nil, err
	}

	if m.valuePredicate != nil {
		var out []attribute.Value
		for _, v := range attr.Values() {
			if m.valuePredicate(v) {
				out = append(out, v)
			}
		}
		return out, nil
	}

	decision, err := m.policyRule.Matches(ctx)
	if err != nil {
		return nil, fmt.Errorf("comparison matcher: policy rule: %w", err)
	}
	switch decision {
	case filter.True:
		return attr.Values(), nil
	case filter.False:
		return nil, nil
	default:
		return nil, fmt.Errorf("comparison matcher: policy rule could not be evaluated")
	}
}
