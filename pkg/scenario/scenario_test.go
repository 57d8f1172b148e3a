package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/slot"
)

type nopRenderer struct{}

func (nopRenderer) ShowSlot(slot.Index) {}
func (nopRenderer) HideSlot(slot.Index) {}
func (nopRenderer) Apply(layout.Frame)  {}

func TestLoad(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "two_party.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "two-party" || s.Self != "me" {
		t.Errorf("header = %q/%q", s.Name, s.Self)
	}
	if len(s.Attendees) != 2 || len(s.Events) != 3 {
		t.Fatalf("attendees=%d events=%d, want 2 and 3", len(s.Attendees), len(s.Events))
	}
	if e := s.Events[0]; e.Type != EventBind || e.Stream != 1 || !e.Local || e.ExternalUser != "x1#Me" {
		t.Errorf("event 0 = %+v", e)
	}
	cfg := s.Config()
	if !cfg.ActiveSpeakerLayout || cfg.Width != 1600 || cfg.SelfAttendeeID != "me" {
		t.Errorf("Config() = %+v", cfg)
	}
	if s.Roster().Len() != 2 {
		t.Errorf("Roster().Len() = %d, want 2", s.Roster().Len())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		code errors.Code
	}{
		{"bad toml", "width = ", errors.ErrCodeInvalidScenario},
		{"negative surface", "width = -5\nheight = 10", errors.ErrCodeInvalidSurface},
		{"bad capacity", "width = 5\nheight = 5\ncapacity = 99", errors.ErrCodeInvalidCapacity},
		{"empty attendee", "width = 5\nheight = 5\n[[attendees]]\nid = \"\"", errors.ErrCodeInvalidAttendee},
		{"unknown event", "width = 5\nheight = 5\n[[events]]\ntype = \"dance\"", errors.ErrCodeInvalidScenario},
		{"missing type", "width = 5\nheight = 5\n[[events]]\nstream = 1", errors.ErrCodeInvalidScenario},
		{"bind without attendee", "width = 5\nheight = 5\n[[events]]\ntype = \"bind\"\nstream = 1", errors.ErrCodeInvalidAttendee},
		{"bad resize", "width = 5\nheight = 5\n[[events]]\ntype = \"resize\"\nwidth = -1", errors.ErrCodeInvalidSurface},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEventErrorNamesIndex(t *testing.T) {
	_, err := Parse([]byte("width = 5\nheight = 5\n[[events]]\ntype = \"remove\"\n[[events]]\ntype = \"x\""))
	if err == nil || !strings.Contains(err.Error(), "event 1") {
		t.Errorf("error = %v, want it to name event 1", err)
	}
}

func TestApplyReportsPasses(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "two_party.toml"))
	if err != nil {
		t.Fatal(err)
	}
	o, err := organizer.New(s.Config(), nopRenderer{}, organizer.WithRoster(s.Roster()))
	if err != nil {
		t.Fatal(err)
	}

	for i, e := range s.Events {
		ran, err := e.Apply(o)
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if !ran {
			t.Errorf("event %d should run a layout pass", i)
		}
	}
	if f := o.Frame(); f.Mode != layout.ModeActiveSpeaker || f.Active != 0 {
		t.Errorf("final frame mode=%s active=%d, want active_speaker on slot 0", f.Mode, f.Active)
	}

	// Removing an unknown stream and toggling availability do not lay out.
	for _, e := range []Event{{Type: EventRemove, Stream: 99}, {Type: EventAvailability}} {
		if ran, _ := e.Apply(o); ran {
			t.Errorf("%s should not run a layout pass", e.Type)
		}
	}
	if o.CanStartLocalVideo() {
		t.Error("availability event should be applied")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "two_party.toml"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, buf.String())
	}
	if len(back.Events) != len(s.Events) || back.Events[1].Attendee != "bob" {
		t.Errorf("round trip lost events: %+v", back.Events)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file config = %+v, want defaults", cfg)
	}

	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte("active_speaker_layout = false\nwidth = 800\nredis_url = \"redis://localhost:6379/0\"\n"), 0o644)
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ActiveSpeakerLayout || cfg.Width != 800 || cfg.Height != organizer.DefaultHeight {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}

	os.WriteFile(path, []byte("capacity = 0\n"), 0o644)
	if _, err := LoadConfig(path); !errors.Is(err, errors.ErrCodeInvalidCapacity) {
		t.Errorf("capacity 0 error = %v, want INVALID_CAPACITY", err)
	}
}

func TestConfigPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "tileorg", "config.toml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}
