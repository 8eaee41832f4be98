package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// createRulesCommand creates the command listing the active rules
func createRulesCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active match rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := env.loadConfig(cmd)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cfg.Rules))
			for i, rule := range cfg.FilterRules() {
				matching := "exact"
				if rule.IgnoreCase {
					matching = "ignore case"
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					rule.Name,
					strings.Join(rule.Signatures, ", "),
					matching,
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("#", "Name", "Signatures", "Case")
			if err := table.Bulk(rows); err != nil {
				return fmt.Errorf("failed to build rules table: %w", err)
			}
			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render rules table: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extensions: %s\n", strings.Join(cfg.Extensions, " "))
			return nil
		},
	}

	cmd.AddCommand(createRulesTestCommand(env))
	return cmd
}

// createRulesTestCommand checks which rule, if any, would remove a line
func createRulesTestCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "test <line>",
		Short: "Test whether a line would be removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := env.loadConfig(cmd)
			if err != nil {
				return err
			}
			rules, err := cfg.RuleSet()
			if err != nil {
				return err
			}

			if rule, ok := rules.Match(args[0]); ok {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed by rule %q\n", rule.Name)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "kept")
			return nil
		},
	}
}
