package main

import (
	"encoding/json"
	"testing"
)

func TestAddCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"add", "https://youtu.be/dQw4w9WgXcQ"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued dQw4w9WgXcQ as item #")
	requireContains(t, out, "Added 1 of 1")

	out, _, err = runCLI(t, []string{"add", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	requireContains(t, out, "Skipped dQw4w9WgXcQ: already queued")
}

func TestAddCommandRejectsBadURL(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"add", "not-a-url"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Rejected not-a-url")
}

func TestAddCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"add", "--json", "https://youtu.be/dQw4w9WgXcQ"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add --json: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if added, ok := payload["added"].(float64); !ok || added != 1 {
		t.Fatalf("expected added=1, got: %v", payload["added"])
	}
	results, ok := payload["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected one result, got: %v", payload["results"])
	}
}
