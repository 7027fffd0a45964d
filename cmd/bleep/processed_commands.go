package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bleep/internal/api"
	"bleep/internal/queueaccess"
)

func newProcessedCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	processedCmd := &cobra.Command{
		Use:   "processed",
		Short: "Show videos already processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueueAccess(ctx, cmd, func(cmdCtx context.Context, access queueaccess.Access) error {
				entries, total, err := access.Processed(cmdCtx, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					if entries == nil {
						entries = []api.ProcessedEntry{}
					}
					return writeJSON(cmd, map[string]any{"entries": entries, "total": total})
				}
				out := cmd.OutOrStdout()
				if total == 0 {
					fmt.Fprintln(out, "No processed videos")
					return nil
				}
				fmt.Fprintf(out, "%d processed videos (showing %d)\n", total, len(entries))
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{entry.VideoID, formatDisplayTime(entry.CompletedAt)})
				}
				table := renderTable([]string{"Video", "Completed"}, rows, []columnAlignment{alignLeft, alignLeft})
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	processedCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	processedCmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	processedCmd.AddCommand(newProcessedClearCommand(ctx))

	return processedCmd
}

func newProcessedClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget processed videos so they can be queued again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueueAccess(ctx, cmd, func(cmdCtx context.Context, access queueaccess.Access) error {
				removed, err := access.ClearProcessed(cmdCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d processed videos\n", removed)
				return nil
			})
		},
	}
}
