package organizer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/observability"
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/slot"
	"github.com/matzehuels/tileorg/pkg/tile"
)

// Default surface size used when a Config leaves it unset.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Renderer applies organizer output to a display surface.
//
// ShowSlot and HideSlot toggle a slot's visibility. Apply receives the
// complete frame of a layout pass; the organizer never delivers placements
// piecemeal.
type Renderer interface {
	ShowSlot(idx slot.Index)
	HideSlot(idx slot.Index)
	Apply(frame layout.Frame)
}

// VideoController pauses and resumes remote video on the session.
type VideoController interface {
	PauseVideoTile(id slot.StreamID)
	UnpauseVideoTile(id slot.StreamID)
}

// Config holds the organizer settings.
type Config struct {
	// SelfAttendeeID is the local attendee. Its own content share is never
	// tiled.
	SelfAttendeeID string

	Width, Height float64

	// ActiveSpeakerLayout prefers the active-speaker mode when a visible
	// tile is active.
	ActiveSpeakerLayout bool

	// Capacity is the slot pool size. Zero means slot.DefaultCapacity.
	Capacity int
}

// DefaultConfig returns a 1280x720 active-speaker configuration.
func DefaultConfig() Config {
	return Config{
		Width:               DefaultWidth,
		Height:              DefaultHeight,
		ActiveSpeakerLayout: true,
		Capacity:            slot.DefaultCapacity,
	}
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *Organizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVideoController enables TogglePause to reach the session.
func WithVideoController(c VideoController) Option {
	return func(o *Organizer) { o.video = c }
}

// WithRoster sets the initial roster. The organizer keeps a copy.
func WithRoster(r *roster.Roster) Option {
	return func(o *Organizer) {
		if r != nil {
			o.roster = r.Clone()
		}
	}
}

// WithFrameIDs replaces the uuid generator used for frame ids.
func WithFrameIDs(fn func() string) Option {
	return func(o *Organizer) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// Organizer coordinates slot assignment and layout for a video session.
type Organizer struct {
	cfg      Config
	renderer Renderer
	video    VideoController
	logger   *log.Logger
	newID    func() string

	pool   *slot.Pool
	tiles  *tile.Registry
	roster *roster.Roster
	shown  map[slot.Index]bool

	canStartLocalVideo bool
	last               layout.Frame
}

// New creates an organizer that renders through r.
func New(cfg Config, r Renderer, opts ...Option) (*Organizer, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "renderer is required")
	}
	if cfg.Width == 0 && cfg.Height == 0 {
		cfg.Width, cfg.Height = DefaultWidth, DefaultHeight
	}
	if err := errors.ValidateSurface(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = slot.DefaultCapacity
	}
	pool, err := slot.NewPool(cfg.Capacity)
	if err != nil {
		return nil, err
	}

	o := &Organizer{
		cfg:                cfg,
		renderer:           r,
		logger:             log.NewWithOptions(io.Discard, log.Options{}),
		newID:              func() string { return uuid.NewString() },
		pool:               pool,
		tiles:              tile.NewRegistry(),
		roster:             roster.New(),
		shown:              make(map[slot.Index]bool),
		canStartLocalVideo: true,
		last:               layout.Frame{Mode: layout.ModeGrid, Active: slot.NotFound},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

//=============================================================================
// Session events
//=============================================================================

// TileDidUpdate handles a stream-bound notification. Tiles without an
// attendee and the local attendee's own content share are ignored. The
// local tile takes the reserved slot; other tiles get the lowest free slot.
// When no slot is free the error is returned and nothing is shown.
func (o *Organizer) TileDidUpdate(st tile.State) error {
	if st.AttendeeID == "" {
		return nil
	}
	if o.cfg.SelfAttendeeID != "" && roster.IsContent(st.AttendeeID) &&
		roster.BaseID(st.AttendeeID) == o.cfg.SelfAttendeeID {
		o.logger.Debug("skipping own content share", "stream", st.StreamID)
		return nil
	}

	prevIdx, hadSlot := o.pool.SlotOf(st.StreamID)
	var prevLocal slot.StreamID
	hadLocal := false
	if st.Local && o.pool.IsLocal(o.pool.LocalSlot()) {
		prevLocal, hadLocal = o.pool.Stream(o.pool.LocalSlot())
	}

	idx, err := o.bind(st)
	if err != nil {
		o.logger.Warn("cannot bind tile", "stream", st.StreamID, "attendee", st.AttendeeID, "err", err)
		return fmt.Errorf("bind stream %d: %w", st.StreamID, err)
	}

	if hadLocal && prevLocal != st.StreamID {
		o.tiles.Delete(prevLocal)
	}
	if hadSlot && prevIdx != idx {
		o.hide(prevIdx)
	}

	o.tiles.Put(st)
	o.show(idx)
	o.logger.Debug("tile bound", "stream", st.StreamID, "slot", idx, "local", st.Local)
	o.pass()
	return nil
}

func (o *Organizer) bind(st tile.State) (slot.Index, error) {
	if st.Local {
		return o.pool.BindLocal(st.StreamID)
	}
	return o.pool.Acquire(st.StreamID)
}

// TileWasRemoved handles a stream-removed notification. Unknown streams are
// ignored.
func (o *Organizer) TileWasRemoved(id slot.StreamID) {
	o.tiles.Delete(id)
	idx, ok := o.pool.Release(id)
	if !ok {
		o.logger.Debug("release of unbound stream", "stream", id)
		return
	}
	o.hide(idx)
	o.logger.Debug("tile removed", "stream", id, "slot", idx)
	o.pass()
}

// AvailabilityDidChange records whether local video can be started.
func (o *Organizer) AvailabilityDidChange(canStartLocalVideo bool) {
	o.canStartLocalVideo = canStartLocalVideo
	o.logger.Debug("video availability changed", "canStartLocalVideo", canStartLocalVideo)
}

// CanStartLocalVideo reports the last availability notification.
func (o *Organizer) CanStartLocalVideo() bool { return o.canStartLocalVideo }

//=============================================================================
// Layout inputs
//=============================================================================

// Resize sets the surface size and lays out again.
func (o *Organizer) Resize(width, height float64) error {
	if err := errors.ValidateSurface(width, height); err != nil {
		return err
	}
	o.cfg.Width, o.cfg.Height = width, height
	o.pass()
	return nil
}

// SetActiveSpeakerLayout toggles the active-speaker mode and lays out again.
func (o *Organizer) SetActiveSpeakerLayout(enabled bool) {
	o.cfg.ActiveSpeakerLayout = enabled
	o.pass()
}

// ActiveSpeakerLayout reports whether the active-speaker mode is enabled.
func (o *Organizer) ActiveSpeakerLayout() bool { return o.cfg.ActiveSpeakerLayout }

// SetRoster replaces the roster with a copy of r and lays out again. A nil
// roster clears it.
func (o *Organizer) SetRoster(r *roster.Roster) {
	o.roster = r.Clone()
	o.pass()
}

// SetAttendeeActive updates one attendee's speaking flag, adding the
// attendee if needed, and lays out again.
func (o *Organizer) SetAttendeeActive(id string, active bool) error {
	if err := o.roster.Set(id, active); err != nil {
		return err
	}
	o.pass()
	return nil
}

// Reset hides and releases every slot, forgets all tiles and lays out again.
// The roster and configuration are kept.
func (o *Organizer) Reset() {
	for _, idx := range o.pool.Occupied() {
		if o.shown[idx] {
			o.hide(idx)
		}
	}
	o.pool.Reset()
	o.tiles = tile.NewRegistry()
	o.logger.Debug("session reset")
	o.pass()
}

// TogglePause pauses or resumes the stream in slot idx.
func (o *Organizer) TogglePause(idx slot.Index) error {
	if err := errors.ValidateSlot(int(idx), o.pool.Capacity()); err != nil {
		return err
	}
	id, ok := o.pool.Stream(idx)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "slot %d is empty", idx)
	}
	st, ok := o.tiles.Tile(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no tile for stream %d", id)
	}
	if o.video != nil {
		if st.Paused {
			o.video.UnpauseVideoTile(id)
		} else {
			o.video.PauseVideoTile(id)
		}
	}
	st.Paused = !st.Paused
	o.tiles.Put(st)
	o.logger.Debug("toggled pause", "stream", id, "slot", idx, "paused", st.Paused)
	return nil
}

//=============================================================================
// Layout pass
//=============================================================================

// Layout runs a layout pass, applies it and returns the frame.
func (o *Organizer) Layout() layout.Frame {
	o.pass()
	return o.last
}

// Frame returns the last applied frame.
func (o *Organizer) Frame() layout.Frame { return o.last }

// Visible returns the shown slots in ascending order.
func (o *Organizer) Visible() []slot.Index {
	occupied := o.pool.Occupied()
	out := occupied[:0]
	for _, idx := range occupied {
		if o.shown[idx] {
			out = append(out, idx)
		}
	}
	return out
}

// Pool exposes the slot pool for inspection.
func (o *Organizer) Pool() *slot.Pool { return o.pool }

// Tiles exposes the tile registry for inspection.
func (o *Organizer) Tiles() *tile.Registry { return o.tiles }

// Roster returns the current roster.
func (o *Organizer) Roster() *roster.Roster { return o.roster }

func (o *Organizer) pass() {
	ctx := context.Background()
	visible := o.Visible()
	start := time.Now()
	observability.Layout().OnPassStart(ctx, len(visible))

	local := slot.NotFound
	if o.pool.IsLocal(o.pool.LocalSlot()) {
		local = o.pool.LocalSlot()
	}
	frame := Plan(PlanInput{
		Width:               o.cfg.Width,
		Height:              o.cfg.Height,
		Visible:             visible,
		Slots:               o.pool,
		Tiles:               o.tiles,
		Roster:              o.roster,
		ActiveSpeakerLayout: o.cfg.ActiveSpeakerLayout,
		LocalSlot:           local,
	})
	frame.ID = o.newID()

	o.renderer.Apply(frame)
	o.last = frame

	observability.Layout().OnPassComplete(ctx, string(frame.Mode), len(frame.Placements), time.Since(start))
	o.logger.Debug("layout pass", "frame", frame.ID, "mode", frame.Mode, "tiles", len(frame.Placements), "active", frame.Active)
}

func (o *Organizer) show(idx slot.Index) {
	o.shown[idx] = true
	o.renderer.ShowSlot(idx)
}

func (o *Organizer) hide(idx slot.Index) {
	delete(o.shown, idx)
	o.renderer.HideSlot(idx)
}
