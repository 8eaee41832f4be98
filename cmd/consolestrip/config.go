package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/consolestrip/internal/config"
)

// createConfigCommand prints the default configuration so it can be saved and edited.
func createConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   "Print the default configuration as YAML",
		Example: "  consolestrip config > ~/.config/consolestrip/config.yml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.DefaultConfigYAML()
			if err != nil {
				return fmt.Errorf("failed to render default config: %w", err)
			}
			_, _ = cmd.OutOrStdout().Write(data)
			return nil
		},
	}
}
