package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/project-kessel/attrfilter/internal/config"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the policy configuration",
		Long: `Validate the policy configuration by building every configured
component. The first invalid matcher, rule, or policy is reported and the
command exits non-zero; a valid configuration prints the engine summary.`,
		RunE: runValidate,
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = os.Getenv("ATTRFILTER_CONFIG")
	}
	if configPath == "" {
		return fmt.Errorf("no configuration: provide --config or ATTRFILTER_CONFIG")
	}

	loader, err := config.NewLoaderWithFlags(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := loader.Get()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	provider := config.NewProvider(cfg)

	if _, err := provider.Mappings(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	engine, err := provider.Engine()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "configuration valid: engine %s with %d policies\n",
		engine.ID(), len(cfg.Engine.Policies))
	return nil
}
