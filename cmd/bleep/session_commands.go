package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bleep/internal/ipc"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Report playback state to the daemon",
	}

	sessionCmd.AddCommand(newSessionSetCommand(ctx))
	sessionCmd.AddCommand(newSessionClearCommand(ctx))
	sessionCmd.AddCommand(newSessionPositionCommand(ctx))

	return sessionCmd
}

func newSessionSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <url>",
		Short: "Point the mute coordinator at the video being played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionSet(args[0])
				if err != nil {
					return err
				}
				printSessionState(cmd, resp.Session)
				return nil
			})
		},
	}
}

func newSessionClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the active playback session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionSet("")
				if err != nil {
					return err
				}
				printSessionState(cmd, resp.Session)
				return nil
			})
		},
	}
}

func newSessionPositionCommand(ctx *commandContext) *cobra.Command {
	var paused bool

	cmd := &cobra.Command{
		Use:   "position <seconds>",
		Short: "Report the playback position in seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil || position < 0 {
				return fmt.Errorf("invalid position %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Position(position, !paused)
				if err != nil {
					return err
				}
				printMuteState(cmd, resp.Mute)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&paused, "paused", false, "Report playback as paused")
	return cmd
}

func printSessionState(cmd *cobra.Command, session ipc.SessionState) {
	out := cmd.OutOrStdout()
	if !session.Active {
		fmt.Fprintln(out, "No active session")
		return
	}
	playing := "paused"
	if session.Playing {
		playing = "playing"
	}
	fmt.Fprintf(out, "Session: %s at %.1fs (%s)\n", session.VideoID, session.Position, playing)
}

func printMuteState(cmd *cobra.Command, state ipc.MuteState) {
	out := cmd.OutOrStdout()
	if !state.Muted {
		fmt.Fprintln(out, "Unmuted")
		return
	}
	reasons := make([]string, 0, 3)
	if state.CaptionActive {
		reasons = append(reasons, "caption")
	}
	if state.ScheduleActive {
		reasons = append(reasons, "schedule")
	}
	if state.OverrideActive {
		reasons = append(reasons, "manual override")
	}
	if len(reasons) == 0 {
		fmt.Fprintln(out, "Muted")
		return
	}
	fmt.Fprintf(out, "Muted (%s)\n", strings.Join(reasons, ", "))
}
