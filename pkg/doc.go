// Package pkg provides the core libraries for tileorg video tile layout.
//
// # Overview
//
// tileorg organizes the video streams of a meeting into a fixed set of
// display slots and computes where each visible tile is drawn. A layout
// pass either foregrounds one tile (active-speaker mode) or arranges all
// tiles in an even grid.
//
// # Architecture
//
// The typical data flow:
//
//	Session notifications (tile bound/removed, speaking, resize)
//	         ↓
//	    [organizer] package (slot binding + layout pass)
//	         ↓
//	    [activity] package (content share > active speaker > none)
//	         ↓
//	    [layout] package (active-speaker or grid placements)
//	         ↓
//	    [sink] package (collect, JSON, SVG, Redis, MongoDB)
//
// # Quick Start
//
// Bind two tiles and run a pass:
//
//	import (
//	    "github.com/matzehuels/tileorg/pkg/organizer"
//	    "github.com/matzehuels/tileorg/pkg/sink"
//	    "github.com/matzehuels/tileorg/pkg/tile"
//	)
//
//	collector := sink.NewCollector()
//	o, _ := organizer.New(organizer.DefaultConfig(), collector)
//	o.TileDidUpdate(tile.State{StreamID: 1, AttendeeID: "me", Local: true})
//	o.TileDidUpdate(tile.State{StreamID: 2, AttendeeID: "bob"})
//	frame := o.Frame()
//
// # Main Packages
//
// ## Core Domain Logic
//
// [slot] - Fixed-capacity slot pool binding stream ids to slot indices, with
// the last slot reserved for the local tile.
//
// [tile] - Tile states reported by the session, in bind order.
//
// [roster] - Ordered attendee list with speaking flags and attendee id
// modalities such as content shares.
//
// [activity] - Selection of the stream to foreground.
//
// [layout] - Pure placement algorithms for the active-speaker and grid modes.
//
// [organizer] - Event-driven facade tying the above together.
//
// ## Replay and Output
//
// [scenario] - TOML meeting scenarios and the user config file.
//
// [sink] - Renderers and publishers for frames.
//
// [pipeline] - Parse → replay → render → publish, shared by the CLI and the
// HTTP server.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for slot, layout and cache events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//
// [slot]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/slot
// [tile]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/tile
// [roster]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/roster
// [activity]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/activity
// [layout]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/layout
// [organizer]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/organizer
// [scenario]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/scenario
// [sink]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/tileorg/pkg/buildinfo
package pkg
