package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bleep/internal/logging"
	"bleep/internal/logs"
	"bleep/internal/logstream"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var component string
	var videoID string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			apiClient, err := logs.NewStreamClient(cfg.API.Bind, cfg.API.Token)
			if err != nil {
				return err
			}

			// The file tail fallback needs the daemon socket; when the dial
			// fails we still try the API path and only surface the dial
			// error if nothing else works.
			var fallback logstream.TailClient
			client, dialErr := ctx.dialClient()
			if client != nil {
				defer client.Close()
				fallback = client
			}

			out := cmd.OutOrStdout()
			encoder := json.NewEncoder(out)
			onEvent := func(evt logging.LogEvent) {
				if jsonOut {
					_ = encoder.Encode(evt)
					return
				}
				fmt.Fprintln(out, formatLogEvent(evt))
			}
			onLine := func(line string) {
				fmt.Fprintln(out, line)
			}

			printed, err := logstream.Stream(cmd.Context(), apiClient, fallback, logstream.Options{
				Lines:  lines,
				Follow: follow,
				Filters: logstream.Filters{
					Component: component,
					VideoID:   videoID,
				},
			}, onEvent, onLine)
			if err != nil {
				if errors.Is(err, logs.ErrAPIUnavailable) && dialErr != nil && !errors.Is(err, logstream.ErrFiltersRequireAPI) {
					return dialErr
				}
				return err
			}
			if !printed && !follow {
				fmt.Fprintln(out, "No log entries available")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&component, "component", "", "Only show events from one component (requires the HTTP API)")
	cmd.Flags().StringVar(&videoID, "video", "", "Only show events for one video (requires the HTTP API)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output events as JSON lines")
	return cmd
}

// formatLogEvent renders a structured event in the same shape the console
// log file uses, so API-backed and file-backed output read alike.
func formatLogEvent(evt logging.LogEvent) string {
	ts := evt.Timestamp.Format("2006-01-02 15:04:05")
	level := strings.ToUpper(strings.TrimSpace(evt.Level))
	if level == "" {
		level = "INFO"
	}
	parts := []string{ts, level}
	if component := strings.TrimSpace(evt.Component); component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	itemID := ""
	if evt.ItemID > 0 {
		itemID = strconv.FormatInt(evt.ItemID, 10)
	}
	line := strings.Join(parts, " ")
	if subject := logging.FormatSubject(evt.VideoID, itemID, evt.Stage); subject != "" {
		line += " " + subject
	}
	if message := strings.TrimSpace(evt.Message); message != "" {
		line += " – " + message
	}
	if len(evt.Details) == 0 {
		return line
	}
	builder := strings.Builder{}
	builder.WriteString(line)
	for _, detail := range evt.Details {
		if strings.TrimSpace(detail.Label) == "" || strings.TrimSpace(detail.Value) == "" {
			continue
		}
		builder.WriteString("\n    ")
		builder.WriteString(detail.Label)
		builder.WriteString(": ")
		builder.WriteString(detail.Value)
	}
	return builder.String()
}
