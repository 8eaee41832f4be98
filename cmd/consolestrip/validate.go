package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// createValidateCommand creates the validate command.
func createValidateCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long:  "Validate configuration file. A missing default config validates the built-in defaults.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, configPath, err := env.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			source := configPath
			if exists, _ := afero.Exists(env.fs, configPath); !exists {
				source = "built-in defaults"
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"Configuration is valid (%s): %d extensions, %d rules, encodings %s\n",
				source, len(cfg.Extensions), len(cfg.Rules), encodingList(cfg.Encoding.Primary, cfg.Encoding.Fallback))
			return nil
		},
	}
}

func encodingList(primary string, fallback []string) string {
	list := primary
	for _, f := range fallback {
		list += " > " + f
	}
	return list
}
