// Package config holds the persisted search form and application paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/model"
)

const (
	AppName     = "urlgrep"
	fileName    = "config.yaml"
	logFileName = "urlgrep.log"
)

// Config is the last-used search form plus logging settings. It is read
// at start and written back when a search starts and on quit.
type Config struct {
	Root       string `mapstructure:"root"`
	Extensions string `mapstructure:"extensions"`
	Pattern    string `mapstructure:"pattern"`
	Login      string `mapstructure:"login"`
	Secret     string `mapstructure:"secret"`
	BasicAuth  bool   `mapstructure:"basic_auth"`

	Log logger.Config `mapstructure:"log"`

	// DataDir is where the cache, config file and log live. Not persisted.
	DataDir string `mapstructure:"-"`
}

// Default returns the configuration used when nothing is saved yet.
func Default(dataDir string) Config {
	return Config{
		Log: logger.Config{
			Level:    "info",
			Encoding: "console",
			Path:     filepath.Join(dataDir, logFileName),
		},
		DataDir: dataDir,
	}
}

// DefaultDataDir is <user config dir>/urlgrep.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Request turns the form values into a search request.
func (c Config) Request() model.SearchRequest {
	return model.NewSearchRequest(c.Root, c.Extensions, c.Pattern, c.Login, c.Secret, c.BasicAuth)
}

// Validate checks the values a search cannot start without. An empty
// pattern is not an error here; the search reports it in its own log.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root address is required")
	}
	if _, err := model.ParseRoot(c.Root); err != nil {
		return fmt.Errorf("invalid root address: %w", err)
	}
	switch c.Log.Encoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (use console or json)", c.Log.Encoding)
	}
	return nil
}
