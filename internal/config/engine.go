package config

import (
	"fmt"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
	"github.com/project-kessel/attrfilter/internal/matcher"
	"github.com/project-kessel/attrfilter/internal/policy"
	"github.com/project-kessel/attrfilter/internal/script"
)

// NewEngine builds a filtering engine from configuration. The first invalid
// component aborts the build; a partially valid filter definition is never
// put into service.
func NewEngine(cfg EngineConfig, observer filter.Observer) (*filter.Engine, error) {
	if len(cfg.Policies) == 0 {
		return nil, ErrNoEngine
	}

	policies := make([]*filter.Policy, 0, len(cfg.Policies))
	for _, policyCfg := range cfg.Policies {
		p, err := newPolicy(policyCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create policy %s: %w", policyCfg.ID, err)
		}
		policies = append(policies, p)
	}

	engine, err := filter.NewEngine(filter.EngineConfig{
		ID:       cfg.ID,
		Policies: policies,
		Observer: observer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

// NewMappings builds the pre-filter value mappings from configuration.
func NewMappings(cfg EngineConfig) ([]*attribute.Mapping, error) {
	mappings := make([]*attribute.Mapping, 0, len(cfg.Mappings))
	for _, mappingCfg := range cfg.Mappings {
		rules := make([]attribute.MappingRule, 0, len(mappingCfg.Rules))
		for _, ruleCfg := range mappingCfg.Rules {
			rule, err := attribute.NewMappingRule(ruleCfg.Pattern, ruleCfg.Replacement, caseInsensitive(ruleCfg.CaseSensitive))
			if err != nil {
				return nil, fmt.Errorf("failed to create mapping rule for attribute %s: %w", mappingCfg.AttributeID, err)
			}
			rules = append(rules, rule)
		}
		mapping, err := attribute.NewMapping(attribute.MappingConfig{
			AttributeID: mappingCfg.AttributeID,
			Rules:       rules,
			Passthrough: mappingCfg.Passthrough,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create mapping: %w", err)
		}
		mappings = append(mappings, mapping)
	}
	return mappings, nil
}

// newPolicy creates one attribute filter policy from configuration.
func newPolicy(cfg PolicyConfig) (*filter.Policy, error) {
	if cfg.When == nil {
		return nil, fmt.Errorf("requirement rule (when) is required")
	}

	when, err := newRule(*cfg.When)
	if err != nil {
		return nil, fmt.Errorf("failed to create requirement rule: %w", err)
	}

	rules := make([]*filter.AttributeRule, 0, len(cfg.Rules))
	for _, ruleCfg := range cfg.Rules {
		if ruleCfg.Matcher == nil {
			return nil, fmt.Errorf("matcher is required for attribute %s", ruleCfg.AttributeID)
		}
		m, err := newMatcher(*ruleCfg.Matcher)
		if err != nil {
			return nil, fmt.Errorf("failed to create matcher for attribute %s: %w", ruleCfg.AttributeID, err)
		}
		rule, err := filter.NewAttributeRule(ruleCfg.AttributeID, m)
		if err != nil {
			return nil, fmt.Errorf("failed to create attribute rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return filter.NewPolicy(filter.PolicyConfig{
		ID:    cfg.ID,
		When:  when,
		Rules: rules,
	})
}

// newRule creates a requirement rule from configuration.
func newRule(cfg RuleConfig) (filter.Rule, error) {
	ignoreCase := caseInsensitive(cfg.CaseSensitive)

	switch cfg.Type {
	case "any":
		return policy.NewAny(), nil
	case "requester":
		return policy.NewRequester(cfg.Value, ignoreCase)
	case "requester_regex":
		return policy.NewRequesterRegexp(cfg.Pattern, ignoreCase)
	case "issuer":
		return policy.NewIssuer(cfg.Value, ignoreCase)
	case "issuer_regex":
		return policy.NewIssuerRegexp(cfg.Pattern, ignoreCase)
	case "principal":
		return policy.NewPrincipal(cfg.Value, ignoreCase)
	case "principal_regex":
		return policy.NewPrincipalRegexp(cfg.Pattern, ignoreCase)
	case "cel":
		return policy.NewCEL(cfg.Expression)
	case "and":
		children, err := newRules(cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("and rule: %w", err)
		}
		return policy.NewAnd(children...)
	case "or":
		children, err := newRules(cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("or rule: %w", err)
		}
		return policy.NewOr(children...)
	case "not":
		if cfg.Rule == nil {
			return nil, fmt.Errorf("%w: not rule requires a child rule", filter.ErrInvalidConfiguration)
		}
		child, err := newRule(*cfg.Rule)
		if err != nil {
			return nil, fmt.Errorf("not rule: %w", err)
		}
		return policy.NewNot(child)
	default:
		return nil, fmt.Errorf("%w: unknown rule type: %s", filter.ErrInvalidConfiguration, cfg.Type)
	}
}

func newRules(cfgs []RuleConfig) ([]filter.Rule, error) {
	rules := make([]filter.Rule, 0, len(cfgs))
	for _, cfg := range cfgs {
		rule, err := newRule(cfg)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// newMatcher creates a matcher from configuration.
func newMatcher(cfg MatcherConfig) (filter.Matcher, error) {
	ignoreCase := caseInsensitive(cfg.CaseSensitive)

	switch cfg.Type {
	case "any":
		return matcher.NewAny(), nil
	case "string":
		return matcher.NewString(matcher.StringConfig{Value: cfg.Value, IgnoreCase: ignoreCase})
	case "regex":
		return matcher.NewRegexp(matcher.RegexpConfig{Pattern: cfg.Pattern, IgnoreCase: ignoreCase})
	case "scope":
		return matcher.NewScope(matcher.StringConfig{Value: cfg.Value, IgnoreCase: ignoreCase})
	case "scope_regex":
		return matcher.NewScopeRegexp(matcher.RegexpConfig{Pattern: cfg.Pattern, IgnoreCase: ignoreCase})
	case "targeted_string":
		return matcher.NewTargetedString(cfg.AttributeID, cfg.Value, ignoreCase)
	case "targeted_regex":
		return matcher.NewTargetedRegexp(cfg.AttributeID, cfg.Pattern, ignoreCase)
	case "lua":
		lm, err := script.NewLuaMatcher(script.LuaMatcherConfig{Name: cfg.Name, Script: cfg.Script})
		if err != nil {
			return nil, err
		}
		return matcher.NewScripted(lm.Name(), lm.Match)
	case "and":
		children, err := newMatchers(cfg.Matchers)
		if err != nil {
			return nil, fmt.Errorf("and matcher: %w", err)
		}
		return matcher.NewAnd(children...)
	case "or":
		children, err := newMatchers(cfg.Matchers)
		if err != nil {
			return nil, fmt.Errorf("or matcher: %w", err)
		}
		return matcher.NewOr(children...)
	case "not":
		if cfg.Rule == nil {
			return nil, fmt.Errorf("%w: not matcher requires a rule", filter.ErrInvalidConfiguration)
		}
		rule, err := newRule(*cfg.Rule)
		if err != nil {
			return nil, fmt.Errorf("not matcher: %w", err)
		}
		return matcher.NewNot(rule)
	default:
		return nil, fmt.Errorf("%w: unknown matcher type: %s", filter.ErrInvalidConfiguration, cfg.Type)
	}
}

func newMatchers(cfgs []MatcherConfig) ([]filter.Matcher, error) {
	matchers := make([]filter.Matcher, 0, len(cfgs))
	for _, cfg := range cfgs {
		m, err := newMatcher(cfg)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}
