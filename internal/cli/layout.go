package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/pipeline"
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/sink"
	"github.com/matzehuels/tileorg/pkg/slot"
	"github.com/matzehuels/tileorg/pkg/tile"
)

// Synthetic session identities used by the layout command.
const (
	selfAttendeeID = "self"
	localStreamID  = slot.StreamID(1000)
)

// layoutOpts holds the flags of the layout command.
type layoutOpts struct {
	width    float64
	height   float64
	tiles    int
	local    bool
	speaker  int
	content  int
	grid     bool
	capacity int
	formats  string
	output   string
}

// layoutCommand creates the layout command for a synthetic session.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out a synthetic set of tiles",
		Long: `Lay out a synthetic set of tiles and print the resulting frame.

Remote tiles are numbered from 1. --speaker and --content name a remote tile
by that number; 0 means none. With -o the frame is exported to every format
given by -f instead of printed.

Defaults for the surface size, layout mode and capacity come from the config
file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("width") {
				opts.width = cfg.Width
			}
			if !cmd.Flags().Changed("height") {
				opts.height = cfg.Height
			}
			if !cmd.Flags().Changed("grid") {
				opts.grid = !cfg.ActiveSpeakerLayout
			}
			if !cmd.Flags().Changed("capacity") {
				opts.capacity = cfg.Capacity
			}
			return c.runLayout(cmd.Context(), opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", organizer.DefaultWidth, "surface width")
	cmd.Flags().Float64Var(&opts.height, "height", organizer.DefaultHeight, "surface height")
	cmd.Flags().IntVarP(&opts.tiles, "tiles", "n", 4, "number of remote tiles")
	cmd.Flags().BoolVar(&opts.local, "local", false, "add the local tile")
	cmd.Flags().IntVar(&opts.speaker, "speaker", 0, "remote tile that is speaking (1-based, 0 = none)")
	cmd.Flags().IntVar(&opts.content, "content", 0, "remote tile that shares content (1-based, 0 = none)")
	cmd.Flags().BoolVar(&opts.grid, "grid", false, "use the grid instead of the active-speaker layout")
	cmd.Flags().IntVar(&opts.capacity, "capacity", slot.DefaultCapacity, "number of slots")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s) with -o: json (default), svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path")

	return cmd
}

// runLayout builds the synthetic session, runs one pass and reports it.
func (c *CLI) runLayout(ctx context.Context, opts layoutOpts) error {
	frame, err := syntheticFrame(c, opts)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.output == "" {
		printFrame(frame)
		return nil
	}

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	artifacts, err := pipeline.Render("layout", []layout.Frame{frame}, pipeline.Options{Formats: formats})
	if err != nil {
		return err
	}
	paths, err := writeArtifacts(basePath(opts.output, ""), formats, artifacts)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// syntheticFrame lays out opts.tiles remote tiles plus the optional local
// tile and content share.
func syntheticFrame(c *CLI, opts layoutOpts) (layout.Frame, error) {
	if opts.tiles < 0 {
		return layout.Frame{}, errors.New(errors.ErrCodeInvalidInput, "tiles must be non-negative, got %d", opts.tiles)
	}
	for name, k := range map[string]int{"speaker": opts.speaker, "content": opts.content} {
		if k < 0 || k > opts.tiles {
			return layout.Frame{}, errors.New(errors.ErrCodeInvalidInput, "%s must be between 0 and %d, got %d", name, opts.tiles, k)
		}
	}

	ros := roster.New()
	if opts.speaker > 0 {
		if err := ros.Set(remoteAttendee(opts.speaker), true); err != nil {
			return layout.Frame{}, err
		}
	}

	o, err := organizer.New(organizer.Config{
		SelfAttendeeID:      selfAttendeeID,
		Width:               opts.width,
		Height:              opts.height,
		ActiveSpeakerLayout: !opts.grid,
		Capacity:            opts.capacity,
	}, sink.NewCollector(), organizer.WithLogger(c.Logger), organizer.WithRoster(ros))
	if err != nil {
		return layout.Frame{}, err
	}

	for _, st := range syntheticTiles(opts) {
		if err := o.TileDidUpdate(st); err != nil {
			return layout.Frame{}, err
		}
	}
	return o.Layout(), nil
}

// syntheticTiles returns the tile notifications for opts in bind order.
func syntheticTiles(opts layoutOpts) []tile.State {
	var out []tile.State
	if opts.local {
		out = append(out, tile.State{
			StreamID:       localStreamID,
			AttendeeID:     selfAttendeeID,
			ExternalUserID: "#Me",
			Local:          true,
		})
	}
	for i := 1; i <= opts.tiles; i++ {
		out = append(out, tile.State{
			StreamID:       slot.StreamID(i),
			AttendeeID:     remoteAttendee(i),
			ExternalUserID: fmt.Sprintf("#Attendee %d", i),
		})
	}
	if opts.content > 0 {
		out = append(out, tile.State{
			StreamID:       slot.StreamID(opts.tiles + 1),
			AttendeeID:     roster.ContentID(remoteAttendee(opts.content)),
			ExternalUserID: fmt.Sprintf("#Attendee %d", opts.content),
		})
	}
	return out
}

func remoteAttendee(i int) string {
	return fmt.Sprintf("attendee-%d", i)
}
