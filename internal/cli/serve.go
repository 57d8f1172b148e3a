package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tileorg/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Settings are read from the environment, after loading --env-file (default
.env) when it exists:

  TILEORG_ADDR         listen address (default :8080)
  TILEORG_LOG_LEVEL    debug, info, warn or error
  TILEORG_REDIS_URL    cache simulation results in Redis
  TILEORG_CACHE_SCOPE  prefix for cache keys shared with other deployments

When TILEORG_REDIS_URL is unset the redis_url of the config file is used.
--addr overrides TILEORG_ADDR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var paths []string
			if envFile != "" {
				paths = append(paths, envFile)
			}
			cfg := server.LoadConfig(paths...)
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cfg.RedisURL == "" {
				if fileCfg, _, err := c.loadConfig(); err == nil {
					cfg.RedisURL = fileCfg.RedisURL
				}
			}
			return c.runServe(cmd.Context(), cfg, cmd.Flags().Changed("verbose"))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")

	return cmd
}

// runServe starts the server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg server.Config, verbose bool) error {
	if !verbose {
		c.SetLogLevel(cfg.Level())
	}

	srv, err := server.New(ctx, cfg, server.WithLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	defer srv.Close()

	printInfo("Listening on %s", StyleHighlight.Render(cfg.Addr))
	return srv.Run(ctx)
}
