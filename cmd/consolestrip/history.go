package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/consolestrip/internal/history"
)

const timeLayout = "2006-01-02 15:04:05"

// createHistoryCommand creates the command listing recorded runs
func createHistoryCommand(env *environment) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistory(cmd.Context(), env)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				mode := "write"
				if run.Summary.DryRun {
					mode = "dry-run"
				}
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format(timeLayout),
					mode,
					run.Root,
					strconv.Itoa(run.Summary.Scanned),
					strconv.Itoa(run.Summary.Modified),
					strconv.Itoa(run.Summary.Removed),
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Run", "Started", "Mode", "Root", "Scanned", "Modified", "Removed")
			if err := table.Bulk(rows); err != nil {
				return fmt.Errorf("failed to build history table: %w", err)
			}
			return table.Render()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.AddCommand(createHistoryShowCommand(env))
	return cmd
}

// createHistoryShowCommand prints the per-file records of one run
func createHistoryShowCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the files touched by a run",
		Long:  "Show the files touched by a run. A unique prefix of the run id is enough.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(cmd.Context(), env)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, files, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Run:      %s\n", run.ID)
			_, _ = fmt.Fprintf(out, "Root:     %s\n", run.Root)
			_, _ = fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(timeLayout))
			_, _ = fmt.Fprintf(out, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
			_, _ = fmt.Fprintf(out, "Dry run:  %t\n", run.Summary.DryRun)
			_, _ = fmt.Fprintf(out, "Scanned %d, modified %d, removed %d lines\n\n",
				run.Summary.Scanned, run.Summary.Modified, run.Summary.Removed)

			if len(files) == 0 {
				_, _ = fmt.Fprintln(out, "No files changed")
				return nil
			}
			return renderFiles(cmd, files)
		},
	}
}

func renderFiles(cmd *cobra.Command, files []history.FileRecord) error {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		detail := f.AfterHash
		if f.Error != "" {
			detail = f.Error
		}
		rows = append(rows, []string{
			f.Path,
			string(f.Status),
			f.Encoding,
			strconv.Itoa(f.Removed),
			detail,
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Path", "Status", "Encoding", "Removed", "Hash / Error")
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build files table: %w", err)
	}
	return table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
