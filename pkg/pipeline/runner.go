package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tileorg/pkg/cache"
	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/observability"
	"github.com/matzehuels/tileorg/pkg/scenario"
)

// Runner encapsulates pipeline execution with caching.
// The CLI and the HTTP server both use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ReplayResult is the outcome of a replay. It is also the cached form.
type ReplayResult struct {
	Frames  []layout.Frame `json:"frames"`
	Dropped int            `json:"dropped"`
}

// Execute runs the complete parse → replay → render → publish pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	s, err := Parse(opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Scenario = s
	result.ScenarioHash = ScenarioHash(s)
	result.Stats.EventCount = len(s.Events)

	// Stage 2: Replay
	replayStart := time.Now()
	rec, replayHit, err := r.ReplayWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	result.Frames = rec.Frames
	result.Stats.FrameCount = len(rec.Frames)
	result.Stats.DroppedBinds = rec.Dropped
	result.Stats.ReplayTime = time.Since(replayStart)
	result.CacheInfo.ReplayHit = replayHit

	r.Logger.Info("replayed scenario",
		"scenario", s.Name,
		"events", result.Stats.EventCount,
		"frames", result.Stats.FrameCount,
		"dropped", rec.Dropped,
		"cached", replayHit,
		"duration", result.Stats.ReplayTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s.Name, rec.Frames, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	// Stage 4: Publish
	if len(opts.Publishers) > 0 {
		publishStart := time.Now()
		if err := r.Publish(ctx, s.Name, rec.Frames, opts); err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
		result.Stats.PublishTime = time.Since(publishStart)
	}

	return result, nil
}

// ReplayWithCacheInfo replays a scenario with caching and returns cache hit
// info. The scenario must already carry any overrides.
func (r *Runner) ReplayWithCacheInfo(ctx context.Context, s *scenario.Scenario, opts Options) (ReplayResult, bool, error) {
	r.applyLogger(&opts)
	if s == nil {
		return ReplayResult{}, false, errors.New(errors.ErrCodeInvalidInput, "scenario is required")
	}

	cacheKey := r.Keyer.FramesKey(ScenarioHash(s), FramesKeyOpts(s))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var rec ReplayResult
			if err := json.Unmarshal(data, &rec); err == nil {
				observability.Cache().OnCacheHit(ctx, "frames")
				return rec, true, nil
			}
			// If deserialization fails, fall through to replay
		}
		observability.Cache().OnCacheMiss(ctx, "frames")
	}

	frames, dropped, err := Replay(s, opts)
	if err != nil {
		return ReplayResult{}, false, err
	}
	rec := ReplayResult{Frames: frames, Dropped: dropped}

	if data, err := json.Marshal(rec); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLFrames); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "frames", len(data))
		}
	}
	return rec, false, nil
}

// Replay is a convenience wrapper that calls ReplayWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Replay(ctx context.Context, s *scenario.Scenario, opts Options) ([]layout.Frame, error) {
	rec, _, err := r.ReplayWithCacheInfo(ctx, s, opts)
	return rec.Frames, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. The render hit is true only when every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, name string, frames []layout.Frame, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	framesData, err := json.Marshal(frames)
	if err != nil {
		return nil, false, fmt.Errorf("serialize frames for cache key: %w", err)
	}
	framesHash := cache.Hash(append([]byte(name+"\n"), framesData...))

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(framesHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}

	rendered, err := Render(name, frames, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(framesHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, name string, frames []layout.Frame, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, name, frames, opts)
	return artifacts, err
}

// Publish hands the frames to every publisher in opts. All publishers are
// tried; the first error is returned.
func (r *Runner) Publish(ctx context.Context, name string, frames []layout.Frame, opts Options) error {
	var first error
	for _, p := range opts.Publishers {
		if err := p.Publish(ctx, name, frames); err != nil {
			r.Logger.Error("publish failed", "publisher", fmt.Sprintf("%T", p), "err", err)
			if first == nil {
				first = err
			}
			continue
		}
		r.Logger.Debug("published frames", "publisher", fmt.Sprintf("%T", p), "frames", len(frames))
	}
	return first
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// ScenarioHash returns the content hash of s. Scenarios that encode to the
// same JSON share a hash.
func ScenarioHash(s *scenario.Scenario) string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
