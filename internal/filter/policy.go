package filter

import "fmt"

// AttributeRule binds an attribute id to the matcher that decides which of
// that attribute's values may be released. Rules are always permit rules:
// the matcher identifies the values that are kept.
type AttributeRule struct {
	attributeID string
	matcher     Matcher
}

// NewAttributeRule creates an attribute rule.
func NewAttributeRule(attributeID string, m Matcher) (*AttributeRule, error) {
	if attributeID == "" {
		return nil, fmt.Errorf("%w: attribute rule requires an attribute id", ErrInvalidConfiguration)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: attribute rule for %s requires a matcher", ErrInvalidConfiguration, attributeID)
	}
	return &AttributeRule{attributeID: attributeID, matcher: m}, nil
}

// AttributeID returns the id of the attribute this rule applies to.
func (r *AttributeRule) AttributeID() string {
	return r.attributeID
}

// Matcher returns the rule's matcher.
func (r *AttributeRule) Matcher() Matcher {
	return r.matcher
}

// Policy couples a requirement rule, which decides whether the policy is
// active for a request, with the attribute rules applied when it is.
type Policy struct {
	id    string
	when  Rule
	rules []*AttributeRule
}

// PolicyConfig configures a Policy.
type PolicyConfig struct {
	// ID identifies the policy. Must be unique within an engine.
	ID string

	// When is the requirement rule evaluated against the filter context.
	When Rule

	// Rules are the attribute rules applied when the policy is active.
	// A policy with no rules is legal; it contributes nothing.
	Rules []*AttributeRule
}

// NewPolicy creates a policy.
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("%w: policy id is required", ErrInvalidConfiguration)
	}
	if cfg.When == nil {
		return nil, fmt.Errorf("%w: policy %s requires a requirement rule", ErrInvalidConfiguration, cfg.ID)
	}
	rules := make([]*AttributeRule, len(cfg.Rules))
	copy(rules, cfg.Rules)
	return &Policy{id: cfg.ID, when: cfg.When, rules: rules}, nil
}

// ID returns the policy identifier.
func (p *Policy) ID() string {
	return p.id
}

// RequirementRule returns the policy's requirement rule.
func (p *Policy) RequirementRule() Rule {
	return p.when
}

// Rules returns a copy of the policy's attribute rules.
func (p *Policy) Rules() []*AttributeRule {
	rules := make([]*AttributeRule, len(p.rules))
	copy(rules, p.rules)
	return rules
}
