package config

import "github.com/spf13/pflag"

// RegisterFlags registers the command-line flags that can override
// configuration values.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("observer", "", "run observer (logging, noop)")
	flags.String("engine-id", "", "engine identifier used in logs")
}

// GetFlagMapping maps flag names to the config keys they override.
func GetFlagMapping() map[string]string {
	return map[string]string{
		"log-level":  "log_level",
		"log-format": "log_format",
		"observer":   "observer",
		"engine-id":  "engine.id",
	}
}
