package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdash/internal/cache"
	"github.com/matheuskafuri/newsdash/internal/config"
)

var (
	flagHistorySearch  string
	flagHistorySources []string
	flagHistorySince   string
	flagHistoryLimit   int
	flagHistoryOffset  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Search articles seen before, offline",
	Long: `Search the local history of every article the dashboard or the feed
command has fetched. Works without network access or a session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cache.QueryOpts{
			Search:  flagHistorySearch,
			Sources: flagHistorySources,
			Limit:   flagHistoryLimit,
			Offset:  flagHistoryOffset,
		}
		if flagHistorySince != "" {
			d, err := parseSince(flagHistorySince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = time.Now().Add(-d)
		}

		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		articles, err := db.GetArticles(opts)
		if err != nil {
			return err
		}
		total, err := db.CountArticles(opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, a := range articles {
			fmt.Fprintf(out, "%3d. %s\n     %s · %s · seen under %s\n     %s\n",
				opts.Offset+i+1, a.Title, a.Source, a.Published.Format("2006-01-02"), a.Query, a.Link)
		}
		if len(articles) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No articles found.")
			return nil
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Showing %d-%d of %d.\n", opts.Offset+1, opts.Offset+len(articles), total)
		if last, ok := db.LastSync(); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Last fetched %s.\n", last.Local().Format("Jan 2 15:04"))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&flagHistorySearch, "search", "s", "", "match title or description")
	historyCmd.Flags().StringSliceVar(&flagHistorySources, "sources", nil, "only these sources")
	historyCmd.Flags().StringVar(&flagHistorySince, "since", "", "only articles published within this duration (e.g., 7d, 24h)")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum articles to show")
	historyCmd.Flags().IntVar(&flagHistoryOffset, "offset", 0, "skip this many articles")
}
