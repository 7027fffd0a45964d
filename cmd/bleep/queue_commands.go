package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bleep/internal/api"
	"bleep/internal/queueaccess"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the video queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func withQueueAccess(ctx *commandContext, cmd *cobra.Command, fn func(context.Context, queueaccess.Access) error) error {
	session, err := ctx.openQueue()
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(cmd.Context(), session.Access)
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueueAccess(ctx, cmd, func(cmdCtx context.Context, access queueaccess.Access) error {
				stats, err := access.Stats(cmdCtx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, stats)
				}
				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueueAccess(ctx, cmd, func(cmdCtx context.Context, access queueaccess.Access) error {
				items, err := access.List(cmdCtx, listStatuses)
				if err != nil {
					return err
				}
				if jsonOut {
					if items == nil {
						items = []api.QueueItem{}
					}
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Video", "Status", "Progress", "Enqueued"},
					buildQueueListRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <itemID>",
		Short: "Show one queue item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePositiveID(args[0])
			if err != nil {
				return err
			}
			return withQueueAccess(ctx, cmd, func(cmdCtx context.Context, access queueaccess.Access) error {
				item, err := access.Describe(cmdCtx, id)
				if err != nil {
					return err
				}
				if item == nil {
					if jsonOut {
						return writeJSON(cmd, map[string]any{"error": "not_found", "id": id})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d not found\n", id)
					return nil
				}
				if jsonOut {
					return writeJSON(cmd, item)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item #%d\n", item.ID)
				fmt.Fprintf(out, "Video: %s\n", item.VideoID)
				fmt.Fprintf(out, "Source: %s\n", item.SourceURL)
				fmt.Fprintf(out, "Status: %s\n", formatStatusLabel(item.Status))
				if progress := strings.TrimSpace(item.Progress); progress != "" {
					fmt.Fprintf(out, "Progress: %s\n", progress)
				}
				if enqueued := formatDisplayTime(item.EnqueuedAt); enqueued != "" {
					fmt.Fprintf(out, "Enqueued: %s\n", enqueued)
				}
				if updated := formatDisplayTime(item.UpdatedAt); updated != "" {
					fmt.Fprintf(out, "Updated: %s\n", updated)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove pending queue items (the in-flight video is left alone)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueueAccess(ctx, cmd, func(cmdCtx context.Context, access queueaccess.Access) error {
				removed, err := access.Clear(cmdCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d queue items\n", removed)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show queue health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQueueAccess(ctx, cmd, func(cmdCtx context.Context, access queueaccess.Access) error {
				health, err := access.Health(cmdCtx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, map[string]int{
						"total":     health.Total,
						"pending":   health.Pending,
						"in_flight": health.InFlight,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nPending: %d\nIn flight: %d\n",
					health.Total,
					health.Pending,
					health.InFlight,
				)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func parsePositiveID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}
