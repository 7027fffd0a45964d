package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bleep/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "add <url>...",
		Short: "Add video URLs to the processing queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Enqueue(args)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				for _, result := range resp.Results {
					switch result.Outcome {
					case "added":
						if result.Item != nil {
							fmt.Fprintf(out, "Queued %s as item #%d\n", result.VideoID, result.Item.ID)
						} else {
							fmt.Fprintf(out, "Queued %s\n", result.VideoID)
						}
					case "already_queued":
						fmt.Fprintf(out, "Skipped %s: already queued\n", result.VideoID)
					case "already_processed":
						fmt.Fprintf(out, "Skipped %s: already processed (clear history with `bleep processed clear`)\n", result.VideoID)
					default:
						detail := result.Error
						if detail == "" {
							detail = "invalid URL"
						}
						fmt.Fprintf(out, "Rejected %s: %s\n", result.SourceURL, detail)
					}
				}
				if resp.Added > 0 {
					fmt.Fprintf(out, "Added %d of %d\n", resp.Added, len(resp.Results))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
