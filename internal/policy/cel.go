package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/project-kessel/attrfilter/internal/filter"
)

// CEL is a requirement rule compiled from a CEL expression. The expression
// has access to:
//   - issuer — the attribute issuer entity id (string)
//   - recipient — the attribute recipient entity id (string)
//   - principal — the authenticated principal name (string, may be "")
//   - attributes — the prefiltered attribute values (map of id to list of
//     raw value strings)
//
// The expression must evaluate to a boolean. A non-boolean result or an
// evaluation error is a Fail, not a False: the rule could not be decided.
//
// Example expressions:
//   - recipient == "https://sp.example.org"
//   - principal.startsWith("admin-") && issuer == "https://idp.example.org"
//   - "staff" in attributes["eduPersonAffiliation"]
type CEL struct {
	program    cel.Program
	expression string
}

// celLibrary declares the variables available to requirement expressions.
func celLibrary() cel.EnvOption {
	return cel.Lib(&celLib{})
}

type celLib struct{}

func (lib *celLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Variable("issuer", cel.StringType),
		cel.Variable("recipient", cel.StringType),
		cel.Variable("principal", cel.StringType),
		cel.Variable("attributes", cel.DynType),
	}
}

func (lib *celLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// NewCEL compiles a CEL requirement rule.
func NewCEL(expression string) (*CEL, error) {
	if expression == "" {
		return nil, fmt.Errorf("%w: cel rule requires an expression", filter.ErrInvalidConfiguration)
	}

	env, err := cel.NewEnv(celLibrary())
	if err != nil {
		return nil, fmt.Errorf("%w: cel rule: failed to create environment: %v", filter.ErrInvalidConfiguration, err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: cel rule: failed to compile expression: %v", filter.ErrInvalidConfiguration, issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: cel rule: failed to create program: %v", filter.ErrInvalidConfiguration, err)
	}

	return &CEL{program: program, expression: expression}, nil
}

// Expression returns the source expression.
func (r *CEL) Expression() string {
	return r.expression
}

// Matches implements filter.Rule.
func (r *CEL) Matches(ctx *filter.Context) (filter.Tristate, error) {
	if ctx == nil {
		return filter.Fail, fmt.Errorf("%w: filter context is required", filter.ErrInvalidInput)
	}

	attrs := make(map[string][]string)
	for id, attr := range ctx.Attributes() {
		raws := make([]string, 0, attr.Len())
		for _, v := range attr.Values() {
			raws = append(raws, v.Raw())
		}
		attrs[id] = raws
	}

	activation := map[string]any{
		"issuer":     ctx.Issuer(),
		"recipient":  ctx.Recipient(),
		"principal":  ctx.Principal(),
		"attributes": attrs,
	}

	result, _, err := r.program.Eval(activation)
	if err != nil {
		return filter.Fail, fmt.Errorf("cel rule: evaluation failed: %w", err)
	}

	if result.Type() != types.BoolType {
		return filter.Fail, fmt.Errorf("cel rule: expression returned %s, want bool", result.Type().TypeName())
	}
	if result.Value().(bool) {
		return filter.True, nil
	}
	return filter.False, nil
}
