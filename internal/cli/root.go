// Package cli implements the urlgrep command line: the interactive TUI,
// one-shot searches and cache maintenance.
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/altinukshini/urlgrep/internal/cache"
	"github.com/altinukshini/urlgrep/internal/config"
	"github.com/altinukshini/urlgrep/internal/fetch"
	"github.com/altinukshini/urlgrep/internal/logger"
	"github.com/altinukshini/urlgrep/internal/search"
	"github.com/altinukshini/urlgrep/internal/tui"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	dataDir   string
	logLevel  string
	logFormat string
	version   string
}

// Execute builds the command tree and runs it.
func Execute(version string) error {
	return NewRootCommand(version).ExecuteContext(context.Background())
}

// NewRootCommand returns the urlgrep command with all subcommands attached.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{version: version}

	rootCmd := &cobra.Command{
		Use:   "urlgrep",
		Short: "Search a regular expression across linked resources",
		Long: `urlgrep searches a regular expression in a resource, or in every
resource an index page links to. Resources are cached on disk per root, so
changing only the pattern searches again without downloading.

Without a subcommand the interactive interface starts with the values of the
last session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.close()
			return env.runTUI(false)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory for the cache, saved form and log (default <user config dir>/urlgrep)")
	flags.StringVar(&opts.logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "diagnostic log format: console or json")

	rootCmd.AddCommand(
		newSearchCommand(opts),
		newCacheCommand(opts),
		newVersionCommand(opts),
	)
	return rootCmd
}

// appEnv is everything a command needs after flags are parsed.
type appEnv struct {
	cfg     config.Config
	store   *config.Store
	cache   *cache.ResourceCache
	log     logger.Interface
	version string
}

func (o *globalOptions) load() (*appEnv, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	dataDir := o.dataDir
	if dataDir == "" {
		d, err := config.DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = d
	}

	store := config.NewStore(dataDir)
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Encoding = o.logFormat
	}
	switch cfg.Log.Encoding {
	case "", "console", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q (use console or json)", cfg.Log.Encoding)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	rc, err := cache.New(dataDir)
	if err != nil {
		return nil, err
	}

	return &appEnv{cfg: cfg, store: store, cache: rc, log: log, version: o.version}, nil
}

func (e *appEnv) close() {
	_ = e.log.Sync()
}

func (e *appEnv) newSession() *search.Session {
	f := fetch.New(fetch.WithLogger(e.log), fetch.WithUserAgent("urlgrep/"+e.version))
	return search.NewSession(f, e.cache, e.log)
}

func (e *appEnv) runTUI(autoStart bool) error {
	e.log.Info("starting tui", "version", e.version, "data_dir", e.cfg.DataDir)
	app := tui.NewApp(e.cfg, e.store, e.newSession(), e.cache, e.log, tui.Options{
		Version:   e.version,
		AutoStart: autoStart,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
