package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"medscribe/generate"
)

type Config struct {
	Endpoint  string        `env:"MEDSCRIBE_ENDPOINT" envDefault:"http://localhost:5000/api/generate"`
	LogPath   string        `env:"MEDSCRIBE_LOG_PATH"`
	ConfigDir string        `env:"MEDSCRIBE_CONFIG_DIR"`
	Timeout   time.Duration `env:"MEDSCRIBE_TIMEOUT" envDefault:"30s"`
	CopyReset time.Duration `env:"MEDSCRIBE_COPY_RESET" envDefault:"2s"`
	Mode      string        `env:"MEDSCRIBE_MODE" envDefault:"summarize"`
	Fake      bool          `env:"MEDSCRIBE_FAKE" envDefault:"false"`
	GUI       bool          `env:"MEDSCRIBE_GUI" envDefault:"false"`
}

// Load reads the given dotenv files (".env" when none are named) into the
// process environment, then parses the environment. Missing dotenv files
// are skipped; variables already set win over file values.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}
	return &cfg, nil
}

// BindFlags registers flags that override the environment. Defaults are
// the values already loaded into c.
func (c *Config) BindFlags(fs *pflag.FlagSet, withGUI bool) {
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "note generation endpoint")
	fs.StringVar(&c.LogPath, "logpath", c.LogPath, "log directory")
	fs.StringVar(&c.ConfigDir, "config-dir", c.ConfigDir, "directory for preferences.yaml")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "dial and response-header timeout")
	fs.BoolVar(&c.Fake, "fake", c.Fake, "use a canned offline generator")
	if withGUI {
		fs.BoolVar(&c.GUI, "gui", c.GUI, "open the desktop window instead of the terminal UI")
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("MEDSCRIBE_ENDPOINT is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("MEDSCRIBE_ENDPOINT is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("MEDSCRIBE_ENDPOINT must be an http or https URL, got %q", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("MEDSCRIBE_ENDPOINT has no host: %q", c.Endpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("MEDSCRIBE_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.CopyReset <= 0 {
		return fmt.Errorf("MEDSCRIBE_COPY_RESET must be positive, got %s", c.CopyReset)
	}
	if _, err := generate.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("MEDSCRIBE_MODE is invalid: %w", err)
	}
	return nil
}

// DefaultMode is the validated startup mode.
func (c *Config) DefaultMode() generate.Mode {
	m, err := generate.ParseMode(c.Mode)
	if err != nil {
		return generate.ModeSummarize
	}
	return m
}
