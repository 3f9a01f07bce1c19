package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"

	"github.com/altinukshini/urlgrep/internal/report"
	"github.com/altinukshini/urlgrep/internal/search"
)

// ErrSearchCancelled is returned by a plain search stopped by a signal.
var ErrSearchCancelled = errors.New("search cancelled")

type searchOptions struct {
	extensions string
	pattern    string
	login      string
	secret     string
	basic      bool
	plain      bool
}

func newSearchCommand(g *globalOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [root]",
		Short: "Run one search",
		Long: `Search runs one search. The root is a URL or a local path; with
--ext it is read as an index page and every linked resource with one of the
extensions is searched, otherwise the root itself is searched.

Values not given on the command line come from the last session.

On a terminal the interactive interface starts and runs the search right
away. With --plain, or when output is redirected, log lines go to stdout and
a summary table follows.

Examples:
  # Search the logs an index page links to
  urlgrep search https://ci.example.com/build/42/ -e log,txt -p 'FAIL\w*'

  # Search a single local file and print plain output
  urlgrep search ./server.log -p 'timeout after \d+ms' --plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.load()
			if err != nil {
				return err
			}
			defer env.close()

			opts.apply(cmd, args, env)
			if err := env.cfg.Validate(); err != nil {
				return err
			}

			if !opts.plain && term.FromEnv().IsTerminalOutput() {
				return env.runTUI(true)
			}
			return env.runPlain(cmd, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.extensions, "ext", "e", "", "comma separated extensions of linked resources to search")
	f.StringVarP(&opts.pattern, "pattern", "p", "", "regular expression to search for")
	f.StringVarP(&opts.login, "login", "u", "", "login for servers that require authentication")
	f.StringVar(&opts.secret, "secret", "", "password for --login (or set URLGREP_SECRET)")
	f.BoolVar(&opts.basic, "basic", false, "send credentials with every request instead of on challenge")
	f.BoolVar(&opts.plain, "plain", false, "print plain output even on a terminal")
	return cmd
}

// apply overlays the flags that were set onto the saved values.
func (o *searchOptions) apply(cmd *cobra.Command, args []string, env *appEnv) {
	if len(args) == 1 {
		env.cfg.Root = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("ext") {
		env.cfg.Extensions = o.extensions
	}
	if flags.Changed("pattern") {
		env.cfg.Pattern = o.pattern
	}
	if flags.Changed("login") {
		env.cfg.Login = o.login
	}
	if flags.Changed("secret") {
		env.cfg.Secret = o.secret
	}
	if flags.Changed("basic") {
		env.cfg.BasicAuth = o.basic
	}
}

func (e *appEnv) runPlain(cmd *cobra.Command, out io.Writer) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var barOut io.Writer
	if term.IsTerminal(os.Stderr) {
		barOut = os.Stderr
	}
	printer := report.NewPrinter(out, barOut)
	session := e.newSession()

	req := e.cfg.Request()
	e.log.Info("plain search", "root", req.Root, "extensions", req.Extensions)
	res := search.Run(ctx, session, req, printer)
	printer.Close()

	fmt.Fprintln(out)
	report.WriteSummary(out, res, session.Units())

	switch res.Outcome {
	case search.OutcomeCancelled:
		return ErrSearchCancelled
	case search.OutcomeFailed:
		return res.Err
	}
	return nil
}
