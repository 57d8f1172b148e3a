package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var asTOML bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := c.loadConfig()
			if err != nil {
				return err
			}
			if asTOML {
				return cfg.Encode(cmd.OutOrStdout())
			}
			printKeyValue("file", path)
			printKeyValue("mode", map[bool]string{true: "active_speaker", false: "grid"}[cfg.ActiveSpeakerLayout])
			printKeyValue("surface", fmt.Sprintf("%gx%g", cfg.Width, cfg.Height))
			printKeyValue("capacity", strconv.Itoa(cfg.Capacity))
			printKeyValue("redis", orNone(cfg.RedisURL))
			printKeyValue("mongodb", orNone(cfg.MongoURI))
			return nil
		},
	}
	show.Flags().BoolVar(&asTOML, "toml", false, "print as TOML")
	cmd.AddCommand(show)

	return cmd
}

func orNone(s string) string {
	if s == "" {
		return StyleDim.Render("none")
	}
	return s
}
