package main

import (
	"testing"
)

func TestSessionSetPositionClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"session", "set", "https://youtu.be/dQw4w9WgXcQ"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session set: %v", err)
	}
	requireContains(t, out, "Session: dQw4w9WgXcQ at")

	out, _, err = runCLI(t, []string{"session", "position", "12.5"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session position: %v", err)
	}
	requireContains(t, out, "Unmuted")

	out, _, err = runCLI(t, []string{"session", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session clear: %v", err)
	}
	requireContains(t, out, "No active session")
}

func TestSessionPositionInvalid(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"session", "position", "-3"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for negative position")
	}

	_, _, err = runCLI(t, []string{"session", "position", "abc"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for non-numeric position")
	}
}

func TestCaptionNoMatch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"caption", "have", "a", "wonderful", "day"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	requireContains(t, out, "No banned terms matched")
}

func TestCaptionMatchesCustomTerm(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"banlist", "add", "frak"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist add: %v", err)
	}
	requireContains(t, out, `Added "frak" to the banlist`)

	out, _, err = runCLI(t, []string{"caption", "what", "the", "frak"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	requireContains(t, out, "Matched: frak")
	requireContains(t, out, "Censored:")
	requireContains(t, out, "Mute engaged")
}

func TestMuteToggle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"mute"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("mute: %v", err)
	}
	requireContains(t, out, "Unmuted")

	out, _, err = runCLI(t, []string{"mute", "toggle"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("mute toggle: %v", err)
	}
	requireContains(t, out, "Muted (manual override)")

	out, _, err = runCLI(t, []string{"mute"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("mute after toggle: %v", err)
	}
	requireContains(t, out, "Muted (manual override)")

	out, _, err = runCLI(t, []string{"mute", "toggle"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("mute toggle back: %v", err)
	}
	requireContains(t, out, "Unmuted")
}
