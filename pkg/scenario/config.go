package scenario

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	tileerrors "github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/slot"
)

// Config is the user configuration file of the tileorg tool.
type Config struct {
	ActiveSpeakerLayout bool    `toml:"active_speaker_layout"`
	Width               float64 `toml:"width"`
	Height              float64 `toml:"height"`
	Capacity            int     `toml:"capacity"`
	RedisURL            string  `toml:"redis_url,omitempty"`
	MongoURI            string  `toml:"mongo_uri,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		ActiveSpeakerLayout: true,
		Width:               organizer.DefaultWidth,
		Height:              organizer.DefaultHeight,
		Capacity:            slot.DefaultCapacity,
	}
}

// ConfigPath returns $XDG_CONFIG_HOME/tileorg/config.toml, falling back to
// the OS user config directory.
func ConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tileorg", "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tileorg", "config.toml"), nil
}

// LoadConfig reads the config file at path. A missing file yields the
// defaults. Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, tileerrors.Wrap(tileerrors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks the surface and capacity.
func (c Config) Validate() error {
	if err := tileerrors.ValidateSurface(c.Width, c.Height); err != nil {
		return err
	}
	return tileerrors.ValidateCapacity(c.Capacity)
}

// Organizer converts the file settings to an organizer configuration.
func (c Config) Organizer() organizer.Config {
	return organizer.Config{
		Width:               c.Width,
		Height:              c.Height,
		ActiveSpeakerLayout: c.ActiveSpeakerLayout,
		Capacity:            c.Capacity,
	}
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
