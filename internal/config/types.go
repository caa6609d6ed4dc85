// Package config loads the declarative filter policy configuration and
// builds engine components from it. The filter core itself never parses
// configuration; it only receives the already-validated objects constructed
// here. Construction is fail fast: the first invalid component aborts the
// whole load.
package config

import "errors"

// Config is the root configuration.
type Config struct {
	// LogLevel is debug, info, warn or error. Defaults to info.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json. Defaults to text.
	LogFormat string `koanf:"log_format"`

	// Observer selects the run observer: logging or noop.
	Observer string `koanf:"observer"`

	// Engine describes the attribute filtering engine.
	Engine EngineConfig `koanf:"engine"`
}

// EngineConfig describes one filtering engine.
type EngineConfig struct {
	// ID identifies the engine in logs.
	ID string `koanf:"id"`

	// Mappings rewrite attribute values before filtering.
	Mappings []MappingConfig `koanf:"mappings"`

	// Policies are evaluated in order.
	Policies []PolicyConfig `koanf:"policies"`
}

// MappingConfig rewrites the values of one attribute.
type MappingConfig struct {
	AttributeID string              `koanf:"attribute_id"`
	Passthrough bool                `koanf:"passthrough"`
	Rules       []MappingRuleConfig `koanf:"rules"`
}

// MappingRuleConfig is one pattern/replacement pair.
type MappingRuleConfig struct {
	Pattern       string `koanf:"pattern"`
	Replacement   string `koanf:"replacement"`
	CaseSensitive *bool  `koanf:"case_sensitive"`
}

// PolicyConfig describes one attribute filter policy.
type PolicyConfig struct {
	// ID identifies the policy. Must be unique within the engine.
	ID string `koanf:"id"`

	// When is the requirement rule deciding whether the policy applies.
	When *RuleConfig `koanf:"when"`

	// Rules are the policy's attribute rules.
	Rules []AttributeRuleConfig `koanf:"rules"`
}

// AttributeRuleConfig binds an attribute id to a matcher.
type AttributeRuleConfig struct {
	AttributeID string         `koanf:"attribute_id"`
	Matcher     *MatcherConfig `koanf:"matcher"`
}

// RuleConfig describes a requirement rule. Type selects the rule kind:
// any, requester, requester_regex, issuer, issuer_regex, principal,
// principal_regex, cel, and, or, not.
type RuleConfig struct {
	Type string `koanf:"type"`

	// Value is the literal for the string rule kinds.
	Value string `koanf:"value"`

	// Pattern is the expression for the regex rule kinds.
	Pattern string `koanf:"pattern"`

	// CaseSensitive defaults to true.
	CaseSensitive *bool `koanf:"case_sensitive"`

	// Expression is the CEL expression for the cel kind.
	Expression string `koanf:"expression"`

	// Rules are the children of the and/or kinds.
	Rules []RuleConfig `koanf:"rules"`

	// Rule is the single child of the not kind.
	Rule *RuleConfig `koanf:"rule"`
}

// MatcherConfig describes a matcher. Type selects the matcher kind: any,
// string, regex, scope, scope_regex, targeted_string, targeted_regex, lua,
// and, or, not.
type MatcherConfig struct {
	Type string `koanf:"type"`

	// Value is the literal for the string and scope kinds.
	Value string `koanf:"value"`

	// Pattern is the expression for the regex kinds.
	Pattern string `koanf:"pattern"`

	// CaseSensitive defaults to true.
	CaseSensitive *bool `koanf:"case_sensitive"`

	// AttributeID is the target attribute for the targeted kinds. Empty
	// means the attribute the matcher is applied to.
	AttributeID string `koanf:"attribute_id"`

	// Name and Script configure the lua kind.
	Name   string `koanf:"name"`
	Script string `koanf:"script"`

	// Matchers are the children of the and/or kinds.
	Matchers []MatcherConfig `koanf:"matchers"`

	// Rule is the policy rule negated by the not kind.
	Rule *RuleConfig `koanf:"rule"`
}

// ErrNoEngine is returned when the configuration defines no policies.
var ErrNoEngine = errors.New("configuration defines no engine policies")

// caseInsensitive converts the optional case_sensitive flag (default true)
// into the ignore-case flag the constructors take.
func caseInsensitive(caseSensitive *bool) bool {
	return caseSensitive != nil && !*caseSensitive
}
