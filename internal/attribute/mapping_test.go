package attribute

import (
	"testing"
)

func mustMappingRule(t *testing.T, pattern, replacement string) MappingRule {
	t.Helper()
	rule, err := NewMappingRule(pattern, replacement, false)
	if err != nil {
		t.Fatalf("NewMappingRule(%q) failed: %v", pattern, err)
	}
	return rule
}

func TestNewMapping(t *testing.T) {
	t.Run("requires an attribute id", func(t *testing.T) {
		_, err := NewMapping(MappingConfig{Rules: []MappingRule{mustMappingRule(t, "a", "b")}})
		if err == nil {
			t.Fatal("expected error for missing attribute id")
		}
	})

	t.Run("requires at least one rule", func(t *testing.T) {
		if _, err := NewMapping(MappingConfig{AttributeID: "uid"}); err == nil {
			t.Fatal("expected error for empty rule list")
		}
	})
}

func TestMapping_Apply(t *testing.T) {
	t.Run("overlapping patterns produce distinct results", func(t *testing.T) {
		// Two source patterns both match "Recursion" and template
		// different results; the output has exactly the two of them.
		mapping, err := NewMapping(MappingConfig{
			AttributeID: "uid",
			Rules: []MappingRule{
				mustMappingRule(t, "R(.+)", "X$1"),
				mustMappingRule(t, "RE(.+)", "Y$1"),
			},
		})
		if err != nil {
			t.Fatalf("NewMapping failed: %v", err)
		}

		attr, _ := NewFromStrings("uid", "Recursion")
		out := mapping.Apply(attr)

		values := out.Values()
		if len(values) != 2 {
			t.Fatalf("expected exactly 2 results, got %d", len(values))
		}
		if values[0].Raw() != "Xecursion" {
			t.Errorf("unexpected first result: %q", values[0].Raw())
		}
		if values[1].Raw() != "Ycursion" {
			t.Errorf("unexpected second result: %q", values[1].Raw())
		}
	})

	t.Run("identical rewrites are deduplicated", func(t *testing.T) {
		mapping, err := NewMapping(MappingConfig{
			AttributeID: "uid",
			Rules: []MappingRule{
				mustMappingRule(t, "R(.+)", "X$1"),
				mustMappingRule(t, "(?s)R(.+)", "X$1"),
			},
		})
		if err != nil {
			t.Fatalf("NewMapping failed: %v", err)
		}

		attr, _ := NewFromStrings("uid", "Recursion")
		out := mapping.Apply(attr)

		if out.Len() != 1 {
			t.Fatalf("expected 1 deduplicated result, got %d", out.Len())
		}
	})

	t.Run("unmatched values are dropped without passthrough", func(t *testing.T) {
		mapping, err := NewMapping(MappingConfig{
			AttributeID: "uid",
			Rules:       []MappingRule{mustMappingRule(t, "R(.+)", "X$1")},
		})
		if err != nil {
			t.Fatalf("NewMapping failed: %v", err)
		}

		attr, _ := NewFromStrings("uid", "Recursion", "unrelated")
		out := mapping.Apply(attr)

		if out.Len() != 1 {
			t.Fatalf("expected unmatched value to be dropped, got %d values", out.Len())
		}
	})

	t.Run("passthrough keeps unmatched values", func(t *testing.T) {
		mapping, err := NewMapping(MappingConfig{
			AttributeID: "uid",
			Passthrough: true,
			Rules:       []MappingRule{mustMappingRule(t, "R(.+)", "X$1")},
		})
		if err != nil {
			t.Fatalf("NewMapping failed: %v", err)
		}

		attr, _ := NewFromStrings("uid", "Recursion", "unrelated")
		out := mapping.Apply(attr)

		if out.Len() != 2 {
			t.Fatalf("expected 2 values with passthrough, got %d", out.Len())
		}
		if out.Values()[1].Raw() != "unrelated" {
			t.Errorf("expected unmatched value to pass through, got %q", out.Values()[1].Raw())
		}
	})

	t.Run("pattern must cover the whole value", func(t *testing.T) {
		mapping, err := NewMapping(MappingConfig{
			AttributeID: "uid",
			Rules:       []MappingRule{mustMappingRule(t, "cursio", "x")},
		})
		if err != nil {
			t.Fatalf("NewMapping failed: %v", err)
		}

		attr, _ := NewFromStrings("uid", "Recursion")
		if out := mapping.Apply(attr); out.Len() != 0 {
			t.Errorf("partial match must not rewrite, got %d values", out.Len())
		}
	})

	t.Run("input attribute is not modified", func(t *testing.T) {
		mapping, err := NewMapping(MappingConfig{
			AttributeID: "uid",
			Rules:       []MappingRule{mustMappingRule(t, "R(.+)", "X$1")},
		})
		if err != nil {
			t.Fatalf("NewMapping failed: %v", err)
		}

		attr, _ := NewFromStrings("uid", "Recursion")
		mapping.Apply(attr)

		if attr.Values()[0].Raw() != "Recursion" {
			t.Error("mapping mutated its input attribute")
		}
	})
}
