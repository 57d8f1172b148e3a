package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tileorg/pkg/pipeline"
	"github.com/matzehuels/tileorg/pkg/scenario"
	"github.com/matzehuels/tileorg/pkg/sink"
)

// publishTimeout bounds connecting to and closing publishers.
const publishTimeout = 10 * time.Second

// simulateOpts holds the flags of the simulate command.
type simulateOpts struct {
	output  string
	formats string
	frame   int
	noCache bool
	publish string
	channel string
	record  string
	print   bool
}

// simulateCommand creates the simulate command that replays a scenario.
func (c *CLI) simulateCommand() *cobra.Command {
	opts := simulateOpts{}
	pipeOpts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "simulate [scenario.toml]",
		Short: "Replay a meeting scenario and export its frames",
		Long: `Replay a meeting scenario and export its frames.

The scenario's events are fed to the organizer in order and the frame of
every layout pass is collected. JSON output holds every frame; SVG draws the
frame picked by --frame (negative values count from the end).

Frames can also be published to a Redis channel (--publish) and recorded in
MongoDB (--record). Pass either flag without a value to use the URL from the
config file.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeOpts.ScenarioPath = args[0]
			pipeOpts.Formats = parseFormats(opts.formats)
			pipeOpts.Frame = opts.frame
			if err := pipeline.ValidateFormats(pipeOpts.Formats); err != nil {
				return err
			}
			return c.runSimulate(cmd.Context(), args[0], opts, pipeOpts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: <scenario> without extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), svg (comma-separated)")
	cmd.Flags().IntVar(&opts.frame, "frame", pipeline.DefaultFrame, "frame drawn by single-frame formats")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.print, "print", false, "print the last frame as a table")
	cmd.Flags().StringVar(&opts.publish, "publish", "", "publish frames to this Redis URL")
	cmd.Flags().StringVar(&opts.channel, "channel", sink.DefaultChannel, "Redis channel for --publish")
	cmd.Flags().StringVar(&opts.record, "record", "", "record frames in this MongoDB URI")
	cmd.Flags().Lookup("publish").NoOptDefVal = configFlagValue
	cmd.Flags().Lookup("record").NoOptDefVal = configFlagValue

	// Replay overrides
	cmd.Flags().Float64Var(&pipeOpts.Width, "width", 0, "override the scenario surface width")
	cmd.Flags().Float64Var(&pipeOpts.Height, "height", 0, "override the scenario surface height")
	cmd.Flags().IntVar(&pipeOpts.Capacity, "capacity", 0, "override the scenario capacity")
	cmd.Flags().BoolVar(&pipeOpts.Refresh, "refresh", false, "replay even when cached frames exist")
	cmd.Flags().BoolVar(&pipeOpts.NoLabels, "no-labels", false, "omit nameplates in SVG output")
	cmd.Flags().BoolVar(&pipeOpts.SlotNumbers, "slot-numbers", false, "print slot numbers in SVG output")

	return cmd
}

// runSimulate replays input through the pipeline and writes the artifacts.
func (c *CLI) runSimulate(ctx context.Context, input string, opts simulateOpts, pipeOpts pipeline.Options) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	publishers, err := c.publishers(ctx, opts)
	if err != nil {
		return err
	}
	defer closePublishers(publishers, c)
	pipeOpts.Publishers = publishers
	pipeOpts.Logger = logger

	sp := newSpinner(os.Stderr, "Replaying "+input+"...")
	sp.Start(ctx)

	st := startStage(logger, "replay")
	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		sp.Fail("Replay failed")
		return err
	}
	sp.Stop()
	st.done("scenario", input, "frames", result.Stats.FrameCount, "cached", result.CacheInfo.ReplayHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(basePath(opts.output, input), pipeOpts.Formats, result.Artifacts)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printSuccess("Simulation complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.FrameCount, result.Stats.DroppedBinds, result.CacheInfo.ReplayHit)
	if result.Stats.DroppedBinds > 0 {
		printWarning("%d bind(s) refused: no free slot", result.Stats.DroppedBinds)
	}
	if opts.print && len(result.Frames) > 0 {
		printNewline()
		printFrame(result.Frames[len(result.Frames)-1])
	}
	printNewline()
	printNextStep("Preview interactively", appName+" watch")

	return nil
}

// publishers connects the sinks requested by opts.
func (c *CLI) publishers(ctx context.Context, opts simulateOpts) ([]sink.Publisher, error) {
	if opts.publish == "" && opts.record == "" {
		return nil, nil
	}
	var cfg scenario.Config
	if opts.publish == configFlagValue || opts.record == configFlagValue {
		loaded, _, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	connectCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var out []sink.Publisher
	if url := resolveFlag(opts.publish, cfg.RedisURL); url != "" {
		p, err := sink.NewRedisPublisher(connectCtx, url, opts.channel)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Debug("publishing frames", "channel", opts.channel)
		out = append(out, p)
	}
	if uri := resolveFlag(opts.record, cfg.MongoURI); uri != "" {
		m, err := sink.NewMongoRecorder(connectCtx, uri, sink.DefaultDatabase, sink.DefaultCollection)
		if err != nil {
			closePublishers(out, c)
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		c.Logger.Debug("recording frames", "database", sink.DefaultDatabase, "collection", sink.DefaultCollection)
		out = append(out, m)
	}
	return out, nil
}

// resolveFlag maps the config sentinel to the configured value.
func resolveFlag(flag, configured string) string {
	if flag == configFlagValue {
		return configured
	}
	return flag
}

func closePublishers(ps []sink.Publisher, c *CLI) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	for _, p := range ps {
		if err := p.Close(ctx); err != nil {
			c.Logger.Warn("close publisher", "err", err)
		}
	}
}
