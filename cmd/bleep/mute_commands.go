package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bleep/internal/ipc"
)

func newMuteCommand(ctx *commandContext) *cobra.Command {
	muteCmd := &cobra.Command{
		Use:   "mute",
		Short: "Show or toggle the mute state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MuteState()
				if err != nil {
					return err
				}
				printMuteState(cmd, resp.Mute)
				return nil
			})
		},
	}

	muteCmd.AddCommand(newMuteToggleCommand(ctx))

	return muteCmd
}

func newMuteToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip the mute state by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MuteToggle()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case resp.Muted && resp.Override:
					fmt.Fprintln(out, "Muted (manual override)")
				case resp.Muted:
					fmt.Fprintln(out, "Muted")
				default:
					fmt.Fprintln(out, "Unmuted")
				}
				return nil
			})
		},
	}
}
