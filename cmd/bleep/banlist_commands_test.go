package main

import (
	"encoding/json"
	"testing"
)

func TestBanlistListDefaults(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"banlist", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist list: %v", err)
	}
	requireContains(t, out, "terms active (0 custom)")
}

func TestBanlistAddRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"banlist", "add", "frak"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist add: %v", err)
	}
	requireContains(t, out, `Added "frak" to the banlist`)

	out, _, err = runCLI(t, []string{"banlist", "add", "frak"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist add duplicate: %v", err)
	}
	requireContains(t, out, `"frak" is already on the banlist`)

	out, _, err = runCLI(t, []string{"banlist", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist list: %v", err)
	}
	requireContains(t, out, "(1 custom)")
	requireContains(t, out, "frak (custom)")

	out, _, err = runCLI(t, []string{"banlist", "remove", "frak"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist remove: %v", err)
	}
	requireContains(t, out, `Removed "frak" from the banlist`)

	out, _, err = runCLI(t, []string{"banlist", "remove", "frak"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist remove again: %v", err)
	}
	requireContains(t, out, `"frak" is not a custom banlist term`)
}

func TestBanlistListJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"banlist", "add", "frak"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("banlist add: %v", err)
	}

	out, _, err := runCLI(t, []string{"banlist", "list", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("banlist list --json: %v", err)
	}

	var payload struct {
		Terms       []string `json:"terms"`
		CustomTerms []string `json:"custom_terms"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if len(payload.CustomTerms) != 1 || payload.CustomTerms[0] != "frak" {
		t.Fatalf("unexpected custom terms: %v", payload.CustomTerms)
	}
	if len(payload.Terms) <= 1 {
		t.Fatalf("expected merged terms to include defaults, got %d", len(payload.Terms))
	}
}
