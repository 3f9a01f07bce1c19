package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. URLGREP_SECRET.
const EnvPrefix = "URLGREP"

// Store loads and saves Config as YAML under the data dir.
type Store struct {
	dataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Path is the config file location.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, fileName)
}

// LoadDotEnv reads .env from the working directory if present. Existing
// environment variables win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load returns defaults, overlaid by the config file, overlaid by
// URLGREP_* environment variables.
func (s *Store) Load() (Config, error) {
	v := s.viper()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Default(s.dataDir)
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DataDir = s.dataDir
	return cfg, nil
}

// Save writes the form values and log settings. The file holds the
// password, so it is only readable by the owner.
func (s *Store) Save(cfg Config) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("root", cfg.Root)
	v.Set("extensions", cfg.Extensions)
	v.Set("pattern", cfg.Pattern)
	v.Set("login", cfg.Login)
	v.Set("secret", cfg.Secret)
	v.Set("basic_auth", cfg.BasicAuth)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.encoding", cfg.Log.Encoding)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(s.Path()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(s.Path(), 0o600); err != nil {
		return fmt.Errorf("restrict config permissions: %w", err)
	}
	return nil
}

func (s *Store) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.Path())
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default(s.dataDir)
	v.SetDefault("root", d.Root)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("pattern", d.Pattern)
	v.SetDefault("login", d.Login)
	v.SetDefault("secret", d.Secret)
	v.SetDefault("basic_auth", d.BasicAuth)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.path", d.Log.Path)
	return v
}
