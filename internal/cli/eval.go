package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/claims"
	"github.com/project-kessel/attrfilter/internal/config"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// NewEvalCmd creates the eval command
func NewEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate the release policy for one request",
		Long: `Evaluate the configured attribute release policy against one request.

Attributes come from an attributes document, a subject token, or both; when
both are given, the document takes precedence per attribute.

Configuration precedence (highest to lowest):
  1. Command-line flags
  2. Environment variables (ATTRFILTER_*)
  3. Configuration file (if --config or ATTRFILTER_CONFIG is set)
  4. Built-in defaults

Examples:
  # Evaluate a document of resolved attributes
  attrfilter eval --config policy.yaml --attributes attrs.yaml \
    --requester https://sp.example.org --principal jsmith

  # Derive attributes from a subject token's claims
  attrfilter eval --config policy.yaml --subject-token token.jwt \
    --requester https://sp.example.org --output json`,
		RunE: runEval,
	}

	cmd.Flags().String("attributes", "", "path to a YAML/JSON attributes document")
	cmd.Flags().String("subject-token", "", "path to a serialized JWT whose claims become attributes")
	cmd.Flags().String("requester", "", "attribute recipient entity id")
	cmd.Flags().String("issuer", "", "attribute issuer entity id")
	cmd.Flags().String("principal", "", "authenticated principal name")
	cmd.Flags().String("output", "yaml", "output format (yaml, json)")

	// Auto-register all config flags
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	// 1. Determine config file path
	configPath := configFile
	if configPath == "" {
		// Check environment variable
		configPath = os.Getenv("ATTRFILTER_CONFIG")
	}

	// 2. Load configuration (file + env vars + flags)
	loader, err := config.NewLoaderWithFlags(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := loader.Get()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// 3. Create provider to build all components from config
	provider := config.NewProvider(cfg)

	engine, err := provider.Engine()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	// 4. Assemble the prefiltered attribute map
	requester, _ := cmd.Flags().GetString("requester")
	issuer, _ := cmd.Flags().GetString("issuer")
	principal, _ := cmd.Flags().GetString("principal")

	attrs := make(attribute.Map)

	if tokenPath, _ := cmd.Flags().GetString("subject-token"); tokenPath != "" {
		raw, err := os.ReadFile(tokenPath)
		if err != nil {
			return fmt.Errorf("failed to read subject token: %w", err)
		}
		subject, err := claims.FromToken(raw)
		if err != nil {
			return fmt.Errorf("failed to map subject token: %w", err)
		}
		attrs = subject.Attributes
		if principal == "" {
			principal = subject.Principal
		}
		if issuer == "" {
			issuer = subject.Issuer
		}
	}

	if attrsPath, _ := cmd.Flags().GetString("attributes"); attrsPath != "" {
		docAttrs, err := readAttributesDocument(attrsPath)
		if err != nil {
			return err
		}
		// Document entries win over token claims per attribute.
		for id, attr := range docAttrs {
			attrs[id] = attr
		}
	}

	if len(attrs) == 0 {
		return fmt.Errorf("no attributes: provide --attributes or --subject-token")
	}

	// 5. Apply configured value mappings, then filter
	attrs, err = provider.ApplyMappings(attrs)
	if err != nil {
		return fmt.Errorf("failed to apply mappings: %w", err)
	}

	ctx, err := filter.NewContext(filter.ContextConfig{
		Issuer:     issuer,
		Recipient:  requester,
		Principal:  principal,
		Attributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("failed to create filter context: %w", err)
	}

	released, err := engine.Filter(ctx)
	if err != nil {
		return fmt.Errorf("filtering failed: %w", err)
	}

	// 6. Print the released attributes
	format, _ := cmd.Flags().GetString("output")
	return writeResult(cmd, released, format)
}

// readAttributesDocument reads a YAML or JSON document mapping attribute ids
// to values. A value is a string, a list of strings, or a {value, scope}
// pair for scoped values.
func readAttributesDocument(path string) (attribute.Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes document: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse attributes document: %w", err)
	}

	attrs := make(attribute.Map, len(doc))
	for id, entry := range doc {
		values, err := documentValues(entry)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", id, err)
		}
		attr, err := attribute.New(id, values...)
		if err != nil {
			return nil, err
		}
		attrs[id] = attr
	}
	return attrs, nil
}

func documentValues(entry any) ([]attribute.Value, error) {
	switch v := entry.(type) {
	case string:
		return []attribute.Value{attribute.NewStringValue(v)}, nil
	case []any:
		var out []attribute.Value
		for _, item := range v {
			value, err := documentValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	default:
		value, err := documentValue(entry)
		if err != nil {
			return nil, err
		}
		return []attribute.Value{value}, nil
	}
}

func documentValue(item any) (attribute.Value, error) {
	switch v := item.(type) {
	case string:
		return attribute.NewStringValue(v), nil
	case map[string]any:
		value, _ := v["value"].(string)
		scope, _ := v["scope"].(string)
		if value == "" || scope == "" {
			return nil, fmt.Errorf("scoped value requires 'value' and 'scope'")
		}
		return attribute.NewScopedValue(value, scope), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", item)
	}
}

// writeResult prints the released attributes as a plain id-to-values map.
func writeResult(cmd *cobra.Command, released attribute.Map, format string) error {
	doc := make(map[string][]string, len(released))
	for id, attr := range released {
		raws := make([]string, 0, attr.Len())
		for _, v := range attr.Values() {
			raws = append(raws, v.Raw())
		}
		doc[id] = raws
	}

	switch format {
	case "json":
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	case "yaml", "":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	default:
		return fmt.Errorf("unsupported output format: %s (supported: yaml, json)", format)
	}
	return nil
}
