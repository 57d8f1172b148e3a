package organizer

import (
	"fmt"
	"testing"

	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/slot"
	"github.com/matzehuels/tileorg/pkg/tile"
)

type recorder struct {
	shown  []slot.Index
	hidden []slot.Index
	frames []layout.Frame
}

func (r *recorder) ShowSlot(idx slot.Index) { r.shown = append(r.shown, idx) }
func (r *recorder) HideSlot(idx slot.Index) { r.hidden = append(r.hidden, idx) }
func (r *recorder) Apply(f layout.Frame)    { r.frames = append(r.frames, f) }
func (r *recorder) last() layout.Frame      { return r.frames[len(r.frames)-1] }

type videoLog struct{ calls []string }

func (v *videoLog) PauseVideoTile(id slot.StreamID) {
	v.calls = append(v.calls, fmt.Sprintf("pause %d", id))
}

func (v *videoLog) UnpauseVideoTile(id slot.StreamID) {
	v.calls = append(v.calls, fmt.Sprintf("unpause %d", id))
}

func newOrganizer(t *testing.T, cfg Config, opts ...Option) (*Organizer, *recorder) {
	t.Helper()
	rec := &recorder{}
	n := 0
	opts = append([]Option{WithFrameIDs(func() string { n++; return fmt.Sprintf("f%d", n) })}, opts...)
	o, err := New(cfg, rec, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o, rec
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		r    Renderer
		code errors.Code
	}{
		{"nil renderer", DefaultConfig(), nil, errors.ErrCodeInvalidInput},
		{"negative width", Config{Width: -1, Height: 10}, &recorder{}, errors.ErrCodeInvalidSurface},
		{"capacity too large", Config{Capacity: 65}, &recorder{}, errors.ErrCodeInvalidCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, tt.r); !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	o, _ := newOrganizer(t, Config{})
	if o.Pool().Capacity() != slot.DefaultCapacity {
		t.Errorf("capacity = %d, want %d", o.Pool().Capacity(), slot.DefaultCapacity)
	}
	if f := o.Layout(); f.Width != DefaultWidth || f.Height != DefaultHeight {
		t.Errorf("surface = %vx%v, want default", f.Width, f.Height)
	}
	if !o.CanStartLocalVideo() {
		t.Error("local video should be startable by default")
	}
}

func TestTileDidUpdateShowsAndApplies(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())

	if err := o.TileDidUpdate(tile.State{StreamID: 7, AttendeeID: "alice", ExternalUserID: "u1#Alice"}); err != nil {
		t.Fatal(err)
	}
	if len(rec.shown) != 1 || rec.shown[0] != 0 {
		t.Errorf("shown = %v, want [0]", rec.shown)
	}
	if len(rec.frames) != 1 {
		t.Fatalf("Apply called %d times, want 1", len(rec.frames))
	}
	f := rec.last()
	if f.ID != "f1" {
		t.Errorf("frame id = %q, want f1", f.ID)
	}
	if len(f.Placements) != 1 || f.Placements[0].Label != "Alice" {
		t.Errorf("placements = %+v, want one labeled Alice", f.Placements)
	}
}

func TestTileDidUpdateIgnored(t *testing.T) {
	tests := []struct {
		name string
		st   tile.State
	}{
		{"no attendee", tile.State{StreamID: 1}},
		{"own content share", tile.State{StreamID: 2, AttendeeID: "me#content", Content: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SelfAttendeeID = "me"
			o, rec := newOrganizer(t, cfg)
			if err := o.TileDidUpdate(tt.st); err != nil {
				t.Fatal(err)
			}
			if len(rec.shown) != 0 || len(rec.frames) != 0 {
				t.Errorf("ignored tile produced shown=%v frames=%d", rec.shown, len(rec.frames))
			}
			if o.Pool().Len() != 0 {
				t.Errorf("pool holds %d streams, want 0", o.Pool().Len())
			}
		})
	}
}

func TestTileDidUpdateOtherContentShown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SelfAttendeeID = "me"
	o, rec := newOrganizer(t, cfg)
	if err := o.TileDidUpdate(tile.State{StreamID: 3, AttendeeID: "bob#content"}); err != nil {
		t.Fatal(err)
	}
	if len(rec.shown) != 1 {
		t.Errorf("shown = %v, want one slot", rec.shown)
	}
}

func TestTileDidUpdateCapacityExceeded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 2
	o, rec := newOrganizer(t, cfg)
	for i := 1; i <= 2; i++ {
		if err := o.TileDidUpdate(tile.State{StreamID: slot.StreamID(i), AttendeeID: fmt.Sprintf("a%d", i)}); err != nil {
			t.Fatalf("tile %d: %v", i, err)
		}
	}
	frames := len(rec.frames)

	err := o.TileDidUpdate(tile.State{StreamID: 3, AttendeeID: "a3"})
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("error = %v, want CAPACITY_EXCEEDED", err)
	}
	if len(rec.shown) != 2 {
		t.Errorf("shown = %v, want only the first two slots", rec.shown)
	}
	if len(rec.frames) != frames {
		t.Error("failed bind should not run a layout pass")
	}
	if _, ok := o.Tiles().Tile(3); ok {
		t.Error("failed bind should not record the tile")
	}
}

func TestTileDidUpdateRebindKeepsSlot(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())
	o.TileDidUpdate(tile.State{StreamID: 7, AttendeeID: "alice"})
	o.TileDidUpdate(tile.State{StreamID: 7, AttendeeID: "alice", Paused: true})

	if len(rec.hidden) != 0 {
		t.Errorf("hidden = %v, want none", rec.hidden)
	}
	if len(o.Visible()) != 1 {
		t.Errorf("visible = %v, want one slot", o.Visible())
	}
	if st, _ := o.Tiles().Tile(7); !st.Paused {
		t.Error("tile state should be updated")
	}
}

func TestLocalTileTwoParty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SelfAttendeeID = "me"
	o, rec := newOrganizer(t, cfg)
	o.TileDidUpdate(tile.State{StreamID: 50, AttendeeID: "me", Local: true})
	o.TileDidUpdate(tile.State{StreamID: 51, AttendeeID: "bob"})
	o.SetAttendeeActive("me", true)

	if got := o.Visible(); len(got) != 2 || got[0] != 0 || got[1] != o.Pool().LocalSlot() {
		t.Fatalf("visible = %v, want [0 %d]", got, o.Pool().LocalSlot())
	}
	f := rec.last()
	if f.Mode != layout.ModeActiveSpeaker || f.Active != 0 {
		t.Errorf("frame mode=%s active=%d, want active_speaker on slot 0", f.Mode, f.Active)
	}
}

func TestLocalTileReplaced(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())
	o.TileDidUpdate(tile.State{StreamID: 50, AttendeeID: "me", Local: true})
	o.TileDidUpdate(tile.State{StreamID: 60, AttendeeID: "me", Local: true})

	if _, ok := o.Tiles().Tile(50); ok {
		t.Error("replaced local stream should be forgotten")
	}
	if id, _ := o.Pool().Stream(o.Pool().LocalSlot()); id != 60 {
		t.Errorf("local slot holds %d, want 60", id)
	}
	if len(rec.hidden) != 0 {
		t.Errorf("hidden = %v, want none", rec.hidden)
	}
}

func TestTileWasRemoved(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())
	o.TileDidUpdate(tile.State{StreamID: 1, AttendeeID: "a"})
	o.TileDidUpdate(tile.State{StreamID: 2, AttendeeID: "b"})
	frames := len(rec.frames)

	o.TileWasRemoved(1)
	if len(rec.hidden) != 1 || rec.hidden[0] != 0 {
		t.Errorf("hidden = %v, want [0]", rec.hidden)
	}
	if len(rec.frames) != frames+1 {
		t.Errorf("Apply called %d times after remove, want 1", len(rec.frames)-frames)
	}
	if got := rec.last().Slots(); len(got) != 1 || got[0] != 1 {
		t.Errorf("placed slots = %v, want [1]", got)
	}

	// Unknown streams are a no-op.
	o.TileWasRemoved(42)
	if len(rec.hidden) != 1 || len(rec.frames) != frames+1 {
		t.Error("removing an unknown stream should not touch the renderer")
	}

	// The freed slot is reused.
	o.TileDidUpdate(tile.State{StreamID: 3, AttendeeID: "c"})
	if idx, _ := o.Pool().SlotOf(3); idx != 0 {
		t.Errorf("new stream got slot %d, want 0", idx)
	}
}

func TestReset(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())
	o.TileDidUpdate(tile.State{StreamID: 1, AttendeeID: "a"})
	o.TileDidUpdate(tile.State{StreamID: 2, AttendeeID: "b"})
	o.TileDidUpdate(tile.State{StreamID: 60, AttendeeID: "me", Local: true})
	o.SetAttendeeActive("a", true)
	frames := len(rec.frames)

	o.Reset()
	if len(rec.hidden) != 3 {
		t.Errorf("hidden = %v, want 3 slots", rec.hidden)
	}
	if len(rec.frames) != frames+1 {
		t.Errorf("Apply called %d times on reset, want 1", len(rec.frames)-frames)
	}
	if f := rec.last(); len(f.Placements) != 0 || f.HasActive() {
		t.Errorf("frame after reset = %d placements, active %d", len(f.Placements), f.Active)
	}
	if o.Pool().Len() != 0 || o.Tiles().Len() != 0 {
		t.Errorf("pool len = %d, tiles = %d, want 0", o.Pool().Len(), o.Tiles().Len())
	}
	if a, ok := o.Roster().Get("a"); !ok || !a.Active {
		t.Error("reset should keep the roster")
	}

	o.TileDidUpdate(tile.State{StreamID: 3, AttendeeID: "c"})
	if idx, _ := o.Pool().SlotOf(3); idx != 0 {
		t.Errorf("first stream after reset got slot %d, want 0", idx)
	}
}

func TestResize(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())
	if err := o.Resize(1600, 900); err != nil {
		t.Fatal(err)
	}
	if f := rec.last(); f.Width != 1600 || f.Height != 900 {
		t.Errorf("frame surface = %vx%v, want 1600x900", f.Width, f.Height)
	}
	if err := o.Resize(-1, 900); !errors.Is(err, errors.ErrCodeInvalidSurface) {
		t.Errorf("Resize(-1) error = %v, want INVALID_SURFACE", err)
	}
}

func TestSetActiveSpeakerLayout(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())
	o.TileDidUpdate(tile.State{StreamID: 1, AttendeeID: "a"})
	o.TileDidUpdate(tile.State{StreamID: 2, AttendeeID: "b"})
	o.TileDidUpdate(tile.State{StreamID: 3, AttendeeID: "c"})
	o.SetAttendeeActive("b", true)
	if rec.last().Mode != layout.ModeActiveSpeaker {
		t.Fatalf("mode = %s, want active_speaker", rec.last().Mode)
	}

	o.SetActiveSpeakerLayout(false)
	if rec.last().Mode != layout.ModeGrid {
		t.Errorf("mode = %s, want grid", rec.last().Mode)
	}
	if o.ActiveSpeakerLayout() {
		t.Error("ActiveSpeakerLayout() should be false")
	}
}

func TestSetRosterNil(t *testing.T) {
	o, _ := newOrganizer(t, DefaultConfig())
	o.SetRoster(nil)
	if err := o.SetAttendeeActive("a", true); err != nil {
		t.Fatalf("SetAttendeeActive after nil roster: %v", err)
	}
	if o.Roster().Len() != 1 {
		t.Errorf("roster len = %d, want 1", o.Roster().Len())
	}
}

func TestRosterIsCopied(t *testing.T) {
	r := roster.New()
	r.Set("a", false)
	o, _ := newOrganizer(t, DefaultConfig(), WithRoster(r))

	r.Set("a", true)
	if a, _ := o.Roster().Get("a"); a.Active {
		t.Error("WithRoster should keep its own copy")
	}

	o.SetRoster(r)
	r.Set("b", true)
	if o.Roster().Len() != 1 {
		t.Errorf("roster len = %d, want 1; SetRoster should keep its own copy", o.Roster().Len())
	}
}

func TestTogglePause(t *testing.T) {
	v := &videoLog{}
	o, _ := newOrganizer(t, DefaultConfig(), WithVideoController(v))
	o.TileDidUpdate(tile.State{StreamID: 9, AttendeeID: "a"})

	for i := 0; i < 2; i++ {
		if err := o.TogglePause(0); err != nil {
			t.Fatal(err)
		}
	}
	if len(v.calls) != 2 || v.calls[0] != "pause 9" || v.calls[1] != "unpause 9" {
		t.Errorf("calls = %v, want [pause 9 unpause 9]", v.calls)
	}

	if err := o.TogglePause(3); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("TogglePause(empty) error = %v, want NOT_FOUND", err)
	}
	if err := o.TogglePause(99); !errors.Is(err, errors.ErrCodeInvalidSlot) {
		t.Errorf("TogglePause(99) error = %v, want INVALID_SLOT", err)
	}
}

func TestAvailabilityDidChange(t *testing.T) {
	o, rec := newOrganizer(t, DefaultConfig())
	o.AvailabilityDidChange(false)
	if o.CanStartLocalVideo() {
		t.Error("CanStartLocalVideo() should be false")
	}
	if len(rec.frames) != 0 {
		t.Error("availability change should not run a layout pass")
	}
}
