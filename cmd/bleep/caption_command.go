package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bleep/internal/ipc"
)

func newCaptionCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "caption <text>...",
		Short: "Probe caption text against the banlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Caption(text)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp.Result)
				}
				out := cmd.OutOrStdout()
				result := resp.Result
				if !result.Matched {
					fmt.Fprintln(out, "No banned terms matched")
					return nil
				}
				fmt.Fprintf(out, "Matched: %s\n", strings.Join(result.Terms, ", "))
				fmt.Fprintf(out, "Censored: %s\n", result.CensoredText)
				if result.Muted {
					fmt.Fprintln(out, "Mute engaged")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
