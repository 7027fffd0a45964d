package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bleep/internal/ipc"
	"bleep/internal/media"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "schedule <url-or-videoID>",
		Short: "Show the stored mute schedule for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, err := media.Parse(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScheduleGet(video.ID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if resp == nil || !resp.Found {
					fmt.Fprintf(out, "No schedule stored for %s\n", video.ID)
					return nil
				}
				schedule := resp.Schedule
				fmt.Fprintf(out, "Video: %s\n", schedule.VideoID)
				fmt.Fprintf(out, "URL: %s\n", schedule.CanonicalURL)
				fmt.Fprintf(out, "Muted: %.1fs across %d windows\n", schedule.MutedSeconds, len(schedule.Windows))
				if len(schedule.Windows) == 0 {
					fmt.Fprintln(out, "No mute windows; playback stays audible")
					return nil
				}
				rows := make([][]string, 0, len(schedule.Windows))
				for _, window := range schedule.Windows {
					rows = append(rows, []string{
						fmt.Sprintf("%.2f", window.Start),
						fmt.Sprintf("%.2f", window.End),
						fmt.Sprintf("%.2f", window.End-window.Start),
						window.Term,
					})
				}
				table := renderTable(
					[]string{"Start", "End", "Duration", "Term"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
