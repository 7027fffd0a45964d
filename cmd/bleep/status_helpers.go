package main

import (
	"fmt"
	"sort"
	"strings"

	"bleep/internal/ipc"
)

func daemonStatusLine(resp *ipc.StatusResponse, colorize bool) string {
	if resp == nil {
		return renderStatusLine("Daemon", statusError, "Status unavailable", colorize)
	}
	if resp.Running {
		detail := "Running"
		if resp.PID > 0 {
			detail = fmt.Sprintf("Running (pid %d)", resp.PID)
		}
		return renderStatusLine("Daemon", statusOK, detail, colorize)
	}
	return renderStatusLine("Daemon", statusWarn, "Not running", colorize)
}

func checkStatusLine(check ipc.PreflightCheck, colorize bool) string {
	detail := strings.TrimSpace(check.Detail)
	if detail == "" {
		detail = check.Description
	}
	switch {
	case check.Passed:
		return renderStatusLine(check.Name, statusOK, detail, colorize)
	case check.Optional:
		return renderStatusLine(check.Name, statusWarn, detail, colorize)
	default:
		return renderStatusLine(check.Name, statusError, detail, colorize)
	}
}

func phaseHealthLines(phases []ipc.PhaseHealth, colorize bool) []string {
	lines := make([]string, 0, len(phases))
	for _, phase := range phases {
		label := formatStatusLabel(phase.Name)
		detail := strings.TrimSpace(phase.Detail)
		if phase.Ready {
			if detail == "" {
				detail = "Ready"
			}
			lines = append(lines, renderStatusLine(label, statusOK, detail, colorize))
			continue
		}
		if detail == "" {
			detail = "Not ready"
		}
		lines = append(lines, renderStatusLine(label, statusWarn, detail, colorize))
	}
	return lines
}

func muteStatusLine(state ipc.MuteState, colorize bool) string {
	if !state.Muted {
		return renderStatusLine("Mute", statusOK, "Unmuted", colorize)
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
	detail := "Muted"
	if len(reasons) > 0 {
		detail = fmt.Sprintf("Muted (%s)", strings.Join(reasons, ", "))
	}
	return renderStatusLine("Mute", statusWarn, detail, colorize)
}

func scheduleStatusLine(state ipc.MuteState, colorize bool) string {
	if !state.ScheduleLoaded {
		return renderStatusLine("Schedule", statusInfo, "No schedule loaded", colorize)
	}
	detail := fmt.Sprintf("%d windows loaded", state.ScheduleWindows)
	return renderStatusLine("Schedule", statusOK, detail, colorize)
}

func banlistStatusLine(state ipc.MuteState, colorize bool) string {
	if state.BanTermCount == 0 {
		return renderStatusLine("Ban Terms", statusWarn, "No terms loaded", colorize)
	}
	return renderStatusLine("Ban Terms", statusOK, fmt.Sprintf("%d terms active", state.BanTermCount), colorize)
}

func sessionStatusLine(state ipc.SessionState, colorize bool) string {
	if !state.Active {
		return renderStatusLine("Session", statusInfo, "No active playback", colorize)
	}
	playing := "paused"
	if state.Playing {
		playing = "playing"
	}
	detail := fmt.Sprintf("%s at %.1fs (%s)", state.VideoID, state.Position, playing)
	return renderStatusLine("Session", statusOK, detail, colorize)
}

func engineActivityLines(resp *ipc.StatusResponse, colorize bool) []string {
	if resp == nil {
		return nil
	}
	lines := make([]string, 0, 3)
	if resp.InFlight != nil {
		detail := fmt.Sprintf("%s (%s)", resp.InFlight.VideoID, formatStatusLabel(resp.InFlight.Status))
		if progress := strings.TrimSpace(resp.InFlight.Progress); progress != "" {
			detail += " - " + progress
		}
		lines = append(lines, renderStatusLine("Processing", statusOK, detail, colorize))
	}
	if resp.LastCompleted != nil && resp.LastCompleted.VideoID != "" {
		lines = append(lines, renderStatusLine("Last Completed", statusOK, resp.LastCompleted.VideoID, colorize))
	}
	if resp.LastFailure != nil && resp.LastFailure.VideoID != "" {
		detail := resp.LastFailure.VideoID
		if resp.LastFailure.Phase != "" {
			detail = fmt.Sprintf("%s (%s phase)", resp.LastFailure.VideoID, resp.LastFailure.Phase)
		}
		lines = append(lines, renderStatusLine("Last Failure", statusWarn, detail, colorize))
	}
	if resp.LastError != "" {
		lines = append(lines, renderStatusLine("Last Error", statusError, resp.LastError, colorize))
	}
	return lines
}

func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}
