// Package pipeline replays meeting scenarios and renders the resulting
// layout frames.
//
// The CLI, the HTTP server and tests share this package so a scenario is
// always replayed and rendered the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: decode the scenario TOML
//  2. Replay: feed every event to an organizer and collect the frames
//  3. Render: produce artifacts (JSON, SVG) from the frames
//  4. Publish: optionally hand the frames to external publishers
//
// Replay and Render results are cached by content hash, so replaying an
// unchanged scenario with unchanged settings is a cache hit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ScenarioPath: "standup.toml",
//	    Formats:      []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tileorg/pkg/cache"
	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/scenario"
	"github.com/matzehuels/tileorg/pkg/sink"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultFrame selects the last frame for single-frame artifacts.
const DefaultFrame = -1

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options. Exactly one source is required.
	ScenarioPath string             `json:"-"`
	ScenarioTOML string             `json:"scenario_toml,omitempty"`
	Scenario     *scenario.Scenario `json:"scenario,omitempty"`

	// Replay overrides; zero values keep the scenario's settings.
	Width               float64 `json:"width,omitempty"`
	Height              float64 `json:"height,omitempty"`
	Capacity            int     `json:"capacity,omitempty"`
	ActiveSpeakerLayout *bool   `json:"active_speaker_layout,omitempty"`
	Refresh             bool    `json:"refresh,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	NoLabels    bool     `json:"no_labels,omitempty"`
	SlotNumbers bool     `json:"slot_numbers,omitempty"`

	// Frame picks the frame drawn by single-frame formats. Negative values
	// count from the end; use DefaultFrame for the last one.
	Frame int `json:"frame,omitempty"`

	// Runtime options (not serialized)
	Logger     *log.Logger      `json:"-"`
	FrameIDs   func() string    `json:"-"`
	Publishers []sink.Publisher `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scenario is the parsed scenario with overrides applied.
	Scenario *scenario.Scenario

	// ScenarioHash is the content hash of the scenario.
	ScenarioHash string

	// Frames are the frames of every layout pass, in order.
	Frames []layout.Frame

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EventCount   int
	FrameCount   int
	DroppedBinds int
	ReplayTime   time.Duration
	RenderTime   time.Duration
	PublishTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReplayHit bool // Whether frames came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForReplay(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that exactly one scenario source is set.
func (o *Options) ValidateForParse() error {
	sources := 0
	for _, set := range []bool{o.ScenarioPath != "", o.ScenarioTOML != "", o.Scenario != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of scenario path, scenario TOML or scenario is required")
	}
	return nil
}

// ValidateForReplay validates the replay overrides.
func (o *Options) ValidateForReplay() error {
	if err := errors.ValidateSurface(o.Width, o.Height); err != nil {
		return err
	}
	if o.Capacity != 0 {
		return errors.ValidateCapacity(o.Capacity)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// logger returns the configured logger or one that discards everything.
func (o *Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}

// Apply writes the replay overrides into s.
func (o *Options) Apply(s *scenario.Scenario) {
	if o.Width != 0 {
		s.Width = o.Width
	}
	if o.Height != 0 {
		s.Height = o.Height
	}
	if o.Capacity != 0 {
		s.Capacity = o.Capacity
	}
	if o.ActiveSpeakerLayout != nil {
		v := *o.ActiveSpeakerLayout
		s.ActiveSpeakerLayout = &v
	}
}

// FramesKeyOpts returns cache key options for a replay of s.
func FramesKeyOpts(s *scenario.Scenario) cache.FramesKeyOpts {
	cfg := s.Config()
	return cache.FramesKeyOpts{
		Width:               cfg.Width,
		Height:              cfg.Height,
		ActiveSpeakerLayout: cfg.ActiveSpeakerLayout,
		Capacity:            cfg.Capacity,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Inset: sink.TileInsetX}
	if format == FormatSVG {
		opts.Frame = o.Frame
		opts.Labels = !o.NoLabels
		opts.SlotNumbers = o.SlotNumbers
	}
	return opts
}
