package policy

import (
	"errors"
	"testing"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

type fixedRule struct {
	decision filter.Tristate
	err      error
}

func (r fixedRule) Matches(ctx *filter.Context) (filter.Tristate, error) {
	return r.decision, r.err
}

var (
	ruleTrue  = fixedRule{decision: filter.True}
	ruleFalse = fixedRule{decision: filter.False}
	ruleFail  = fixedRule{decision: filter.Fail, err: errors.New("undecidable")}
)

func testContext(t *testing.T, issuer, recipient, principal string) *filter.Context {
	t.Helper()
	affiliation, err := attribute.NewFromStrings("eduPersonAffiliation", "member", "staff")
	if err != nil {
		t.Fatalf("failed to create attribute: %v", err)
	}
	ctx, err := filter.NewContext(filter.ContextConfig{
		Issuer:     issuer,
		Recipient:  recipient,
		Principal:  principal,
		Attributes: attribute.Map{"eduPersonAffiliation": affiliation},
	})
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	return ctx
}

func defaultContext(t *testing.T) *filter.Context {
	t.Helper()
	return testContext(t, "https://idp.example.org", "https://sp.example.org", "jsmith")
}

func TestAny(t *testing.T) {
	decision, err := NewAny().Matches(defaultContext(t))
	if err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	if decision != filter.True {
		t.Errorf("expected true, got %s", decision)
	}
}

func TestStringRules(t *testing.T) {
	ctx := defaultContext(t)

	tests := []struct {
		name  string
		build func(value string, ignoreCase bool) (filter.Rule, error)
		match string
	}{
		{"requester", NewRequester, "https://sp.example.org"},
		{"issuer", NewIssuer, "https://idp.example.org"},
		{"principal", NewPrincipal, "jsmith"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := tc.build(tc.match, false)
			if err != nil {
				t.Fatalf("construction failed: %v", err)
			}
			if decision, _ := rule.Matches(ctx); decision != filter.True {
				t.Errorf("expected true for matching value, got %s", decision)
			}

			rule, err = tc.build("something-else", false)
			if err != nil {
				t.Fatalf("construction failed: %v", err)
			}
			if decision, _ := rule.Matches(ctx); decision != filter.False {
				t.Errorf("expected false for non-matching value, got %s", decision)
			}

			if _, err := tc.build("", false); !errors.Is(err, filter.ErrInvalidConfiguration) {
				t.Errorf("expected configuration error for empty value, got %v", err)
			}
		})
	}

	t.Run("case folding", func(t *testing.T) {
		rule, err := NewPrincipal("JSMITH", true)
		if err != nil {
			t.Fatalf("NewPrincipal failed: %v", err)
		}
		if decision, _ := rule.Matches(ctx); decision != filter.True {
			t.Errorf("expected case-insensitive match, got %s", decision)
		}
	})

	t.Run("empty context field fails rather than denies", func(t *testing.T) {
		rule, err := NewPrincipal("jsmith", false)
		if err != nil {
			t.Fatalf("NewPrincipal failed: %v", err)
		}
		noPrincipal := testContext(t, "https://idp.example.org", "https://sp.example.org", "")
		decision, err := rule.Matches(noPrincipal)
		if decision != filter.Fail {
			t.Errorf("expected fail for missing principal, got %s", decision)
		}
		if err == nil {
			t.Error("expected an error explaining the failure")
		}
	})
}

func TestRegexRules(t *testing.T) {
	ctx := defaultContext(t)

	t.Run("whole string only", func(t *testing.T) {
		rule, err := NewRequesterRegexp(`https://sp\..*`, false)
		if err != nil {
			t.Fatalf("NewRequesterRegexp failed: %v", err)
		}
		if decision, _ := rule.Matches(ctx); decision != filter.True {
			t.Errorf("expected true, got %s", decision)
		}

		// A pattern matching only part of the entity id does not match.
		rule, err = NewRequesterRegexp(`example`, false)
		if err != nil {
			t.Fatalf("NewRequesterRegexp failed: %v", err)
		}
		if decision, _ := rule.Matches(ctx); decision != filter.False {
			t.Errorf("expected false for partial match, got %s", decision)
		}
	})

	t.Run("rejects invalid patterns", func(t *testing.T) {
		if _, err := NewIssuerRegexp("(", false); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
		if _, err := NewPrincipalRegexp("", false); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Errorf("expected configuration error for empty pattern, got %v", err)
		}
	})
}

func TestAnd(t *testing.T) {
	t.Run("requires children", func(t *testing.T) {
		if _, err := NewAnd(); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Errorf("no children: expected configuration error, got %v", err)
		}
		if _, err := NewAnd(nil); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Errorf("nil child: expected configuration error, got %v", err)
		}
	})

	ctx := defaultContext(t)

	tests := []struct {
		name     string
		children []filter.Rule
		want     filter.Tristate
	}{
		{"all true", []filter.Rule{ruleTrue, ruleTrue}, filter.True},
		{"any false", []filter.Rule{ruleTrue, ruleFalse}, filter.False},
		{"any fail without false", []filter.Rule{ruleTrue, ruleFail}, filter.Fail},
		{"false beats fail", []filter.Rule{ruleFail, ruleFalse}, filter.False},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := NewAnd(tc.children...)
			if err != nil {
				t.Fatalf("NewAnd failed: %v", err)
			}
			decision, err := rule.Matches(ctx)
			if decision != tc.want {
				t.Errorf("expected %s, got %s", tc.want, decision)
			}
			if tc.want == filter.Fail && err == nil {
				t.Error("expected an error alongside the failure")
			}
		})
	}
}

func TestOr(t *testing.T) {
	t.Run("requires children", func(t *testing.T) {
		if _, err := NewOr(); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	ctx := defaultContext(t)

	tests := []struct {
		name     string
		children []filter.Rule
		want     filter.Tristate
	}{
		{"any true", []filter.Rule{ruleFalse, ruleTrue}, filter.True},
		{"all false", []filter.Rule{ruleFalse, ruleFalse}, filter.False},
		{"any fail without true", []filter.Rule{ruleFalse, ruleFail}, filter.Fail},
		{"true beats fail", []filter.Rule{ruleFail, ruleTrue}, filter.True},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := NewOr(tc.children...)
			if err != nil {
				t.Fatalf("NewOr failed: %v", err)
			}
			decision, err := rule.Matches(ctx)
			if decision != tc.want {
				t.Errorf("expected %s, got %s", tc.want, decision)
			}
			if tc.want == filter.Fail && err == nil {
				t.Error("expected an error alongside the failure")
			}
		})
	}
}

func TestNot(t *testing.T) {
	t.Run("requires a child", func(t *testing.T) {
		if _, err := NewNot(nil); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	ctx := defaultContext(t)

	tests := []struct {
		name  string
		child filter.Rule
		want  filter.Tristate
	}{
		{"inverts true", ruleTrue, filter.False},
		{"inverts false", ruleFalse, filter.True},
		{"fail stays fail", ruleFail, filter.Fail},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := NewNot(tc.child)
			if err != nil {
				t.Fatalf("NewNot failed: %v", err)
			}
			decision, _ := rule.Matches(ctx)
			if decision != tc.want {
				t.Errorf("expected %s, got %s", tc.want, decision)
			}
		})
	}
}

func TestCEL(t *testing.T) {
	t.Run("requires an expression", func(t *testing.T) {
		if _, err := NewCEL(""); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	t.Run("rejects expressions that do not compile", func(t *testing.T) {
		if _, err := NewCEL("recipient =="); !errors.Is(err, filter.ErrInvalidConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	ctx := defaultContext(t)

	t.Run("true and false decisions", func(t *testing.T) {
		tests := []struct {
			expression string
			want       filter.Tristate
		}{
			{`recipient == "https://sp.example.org"`, filter.True},
			{`recipient == "https://other.example.org"`, filter.False},
			{`principal.startsWith("j") && issuer == "https://idp.example.org"`, filter.True},
			{`"staff" in attributes["eduPersonAffiliation"]`, filter.True},
			{`"faculty" in attributes["eduPersonAffiliation"]`, filter.False},
		}
		for _, tc := range tests {
			rule, err := NewCEL(tc.expression)
			if err != nil {
				t.Fatalf("NewCEL(%q) failed: %v", tc.expression, err)
			}
			decision, err := rule.Matches(ctx)
			if err != nil {
				t.Fatalf("Matches(%q) failed: %v", tc.expression, err)
			}
			if decision != tc.want {
				t.Errorf("%q: expected %s, got %s", tc.expression, tc.want, decision)
			}
		}
	})

	t.Run("evaluation error is a failure", func(t *testing.T) {
		// Indexing a missing attribute id raises a CEL evaluation error.
		rule, err := NewCEL(`"x" in attributes["missing"]`)
		if err != nil {
			t.Fatalf("NewCEL failed: %v", err)
		}
		decision, err := rule.Matches(ctx)
		if decision != filter.Fail {
			t.Errorf("expected fail, got %s", decision)
		}
		if err == nil {
			t.Error("expected an evaluation error")
		}
	})

	t.Run("non-boolean result is a failure", func(t *testing.T) {
		rule, err := NewCEL(`principal`)
		if err != nil {
			t.Fatalf("NewCEL failed: %v", err)
		}
		decision, err := rule.Matches(ctx)
		if decision != filter.Fail {
			t.Errorf("expected fail, got %s", decision)
		}
		if err == nil {
			t.Error("expected an error for non-boolean result")
		}
	})
}
