package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altinukshini/urlgrep/internal/report"
	"github.com/altinukshini/urlgrep/internal/tui/cacheview"
)

func newCacheCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clean the resource cache",
		Long: `Fetched resources are cached per root so a second search with a new
pattern does not download them again. The cache has no expiry; clean it when
the remote resources change.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cached roots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				env, err := g.load()
				if err != nil {
					return err
				}
				defer env.close()

				entries, err := env.cache.ListEntries()
				if err != nil {
					return fmt.Errorf("list cache: %w", err)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
					return nil
				}
				report.WriteCacheTable(cmd.OutOrStdout(), entries, cacheview.FormatSize)
				return nil
			},
		},
		&cobra.Command{
			Use:   "purge",
			Short: "Delete every cached resource",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				env, err := g.load()
				if err != nil {
					return err
				}
				defer env.close()

				fmt.Fprintln(cmd.OutOrStdout(), "Cleaning cache...")
				if msg := env.cache.PurgeAll(); msg != "" {
					return errors.New(msg)
				}
				env.log.Info("cache purged", "dir", env.cache.Dir())
				fmt.Fprintln(cmd.OutOrStdout(), "Cleaned!")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <bucket>",
			Short: "Delete the cached resources of one root",
			Long:  "Delete removes one bucket. Bucket names are shown by 'urlgrep cache list'.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env, err := g.load()
				if err != nil {
					return err
				}
				defer env.close()

				if err := env.cache.DeleteEntry(args[0]); err != nil {
					return fmt.Errorf("delete cache bucket: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
