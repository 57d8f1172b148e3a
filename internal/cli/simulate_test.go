package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const standup = `
name = "standup"
self = "me"
width = 1600
height = 900

[[events]]
type = "bind"
stream = 1
attendee = "me"
local = true

[[events]]
type = "bind"
stream = 2
attendee = "bob"
external_user = "x2#Bob"

[[events]]
type = "bind"
stream = 3
attendee = "carol"
external_user = "x3#Carol"

[[events]]
type = "speak"
attendee = "carol"
active = true
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standup.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSimulateWritesArtifacts(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := writeScenario(t, standup)

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"simulate", input, "--no-cache", "-f", "json,svg"})
	if err := root.Execute(); err != nil {
		t.Fatalf("simulate error: %v", err)
	}

	base := strings.TrimSuffix(input, ".toml")
	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read json output: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("json output is invalid: %v", err)
	}
	if !strings.Contains(string(data), "standup") {
		t.Error("json output does not name the scenario")
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg output: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(svg)), "<svg") {
		t.Errorf("svg output starts with %q", string(svg[:min(len(svg), 20)]))
	}
}

func TestSimulateOutputFlag(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	input := writeScenario(t, standup)
	out := filepath.Join(t.TempDir(), "frames.json")

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"simulate", input, "-o", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected %s: %v", out, err)
	}
}

func TestSimulateErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(input string) []string
	}{
		{"bad format", func(in string) []string { return []string{"simulate", in, "-f", "png"} }},
		{"missing file", func(in string) []string { return []string{"simulate", in + ".missing", "--no-cache"} }},
		{"frame out of range", func(in string) []string { return []string{"simulate", in, "--no-cache", "-f", "svg", "--frame", "99"} }},
		{"bad capacity", func(in string) []string { return []string{"simulate", in, "--no-cache", "--capacity", "65"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", t.TempDir())
			input := writeScenario(t, standup)

			root := New(io.Discard, LogInfo).RootCommand()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tt.args(input))
			if err := root.Execute(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestResolveFlag(t *testing.T) {
	tests := []struct {
		flag, configured, want string
	}{
		{"", "redis://cfg", ""},
		{"redis://cli", "redis://cfg", "redis://cli"},
		{configFlagValue, "redis://cfg", "redis://cfg"},
		{configFlagValue, "", ""},
	}
	for _, tt := range tests {
		if got := resolveFlag(tt.flag, tt.configured); got != tt.want {
			t.Errorf("resolveFlag(%q, %q) = %q, want %q", tt.flag, tt.configured, got, tt.want)
		}
	}
}
