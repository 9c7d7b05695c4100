package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/cache"
	"github.com/matheuskafuri/newsdash/internal/config"
	"github.com/matheuskafuri/newsdash/internal/feed"
	"github.com/matheuskafuri/newsdash/internal/prefs"
	"github.com/matheuskafuri/newsdash/internal/query"
)

var (
	flagFeedQuery      string
	flagFeedFrom       string
	flagFeedTo         string
	flagFeedCategories []string
	flagFeedSources    []string
	flagFeedPages      int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print your feed",
	Long: `Print articles from your feed without opening the dashboard.

By default the feed is filtered by your stored preferences. Passing
--categories or --sources replaces them for this search.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := query.ParseDate(flagFeedFrom)
		if err != nil {
			return fmt.Errorf("invalid --from value: %w", err)
		}
		end, err := query.ParseDate(flagFeedTo)
		if err != nil {
			return fmt.Errorf("invalid --to value: %w", err)
		}
		if flagFeedPages < 1 {
			return fmt.Errorf("--pages must be at least 1")
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.activeSession()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flagFeedPages+1)*e.cfg.RequestTimeoutDuration())
		defer cancel()

		var override *query.Filters
		if cmd.Flags().Changed("categories") || cmd.Flags().Changed("sources") {
			override = &query.Filters{
				Categories: prefs.Normalize(flagFeedCategories),
				Sources:    prefs.Normalize(flagFeedSources),
			}
		}

		var filters query.Filters
		if override == nil {
			p, err := prefs.New(e.client, s, e.log).Load(ctx)
			if err != nil {
				if api.IsUnauthorized(err) {
					return authHint(err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: could not load preferences, showing all news")
			}
			filters = p.Filters()
		}

		q := query.NewBuilder(e.cfg.Limit()).Build(query.Inputs{Text: flagFeedQuery, Start: start, End: end}, override, filters)
		if err := q.Validate(); err != nil {
			return err
		}

		pager := feed.New(e.client, s, e.log)
		if _, err := pager.InitialFetch(ctx, q); err != nil {
			return authHint(err)
		}
		for page := 1; page < flagFeedPages && pager.CanLoadMore(); page++ {
			if _, err := pager.IncrementalFetch(ctx, q); err != nil {
				return authHint(err)
			}
		}

		st := pager.Snapshot()
		printArticles(cmd.OutOrStdout(), st.Items)
		switch {
		case !st.HasMore:
			fmt.Fprintln(cmd.ErrOrStderr(), "No more content available.")
		case st.Total > 0:
			fmt.Fprintf(cmd.ErrOrStderr(), "Showing %d of %d (use --pages for more).\n", len(st.Items), st.Total)
		}

		record(e.log, q, st.Items)
		return nil
	},
}

func init() {
	feedCmd.Flags().StringVarP(&flagFeedQuery, "query", "q", "", "free-text search")
	feedCmd.Flags().StringVar(&flagFeedFrom, "from", "", "earliest publication date (YYYY-MM-DD)")
	feedCmd.Flags().StringVar(&flagFeedTo, "to", "", "latest publication date (YYYY-MM-DD)")
	feedCmd.Flags().StringSliceVar(&flagFeedCategories, "categories", nil, "categories for this search, replacing preferences")
	feedCmd.Flags().StringSliceVar(&flagFeedSources, "sources", nil, "sources for this search, replacing preferences")
	feedCmd.Flags().IntVar(&flagFeedPages, "pages", 1, "number of pages to fetch")
}

// record adds printed articles to the local history. Failures only log.
func record(log *zap.Logger, q query.Params, articles []api.Article) {
	db, err := cache.Open(config.CachePath())
	if err != nil {
		log.Warn("history unavailable", zap.Error(err))
		return
	}
	defer db.Close()

	now := time.Now()
	rows := feed.ToCache(articles, now)
	for i := range rows {
		rows[i].Query = q.Describe()
	}
	if err := db.UpsertArticles(rows); err != nil {
		log.Warn("recording history failed", zap.Error(err))
		return
	}
	if err := db.SetLastSync(now); err != nil {
		log.Warn("recording sync time failed", zap.Error(err))
	}
}

func printArticles(w io.Writer, articles []api.Article) {
	for i, a := range articles {
		published := "undated"
		if !a.Published.IsZero() {
			published = a.Published.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%3d. %s\n     %s · %s\n     %s\n", i+1, a.Title, a.Source, published, a.URL)
	}
}
