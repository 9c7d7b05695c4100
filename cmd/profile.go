package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdash/internal/prefs"
)

var (
	flagSetCategories []string
	flagSetSources    []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your preferred categories and sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.activeSession()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeoutDuration())
		defer cancel()

		store := prefs.New(e.client, s, e.log)
		p, err := store.Load(ctx)
		if err != nil {
			return authHint(err)
		}
		printProfile(cmd.OutOrStdout(), p, store)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace your preferred categories and sources",
	Long: `Replace the stored preferences. The values given replace the stored ones
wholesale; a flag that is not given is saved as empty.

  newsdash profile set --categories science,technology --sources "The Guardian"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("categories") && !cmd.Flags().Changed("sources") {
			return errors.New("nothing to set (use --categories and/or --sources)")
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		next := prefs.Preferences{
			Categories: prefs.Normalize(flagSetCategories),
			Sources:    prefs.Normalize(flagSetSources),
		}
		if err := checkKnown("category", next.Categories, e.cfg.Categories); err != nil {
			return err
		}
		if err := checkKnown("source", next.Sources, e.cfg.Sources); err != nil {
			return err
		}

		s, err := e.activeSession()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeoutDuration())
		defer cancel()

		store := prefs.New(e.client, s, e.log)
		if err := store.Save(ctx, next); err != nil {
			return authHint(err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Preferences saved.")
		printProfile(cmd.OutOrStdout(), store.Current(), nil)
		return nil
	},
}

func init() {
	profileSetCmd.Flags().StringSliceVar(&flagSetCategories, "categories", nil, "preferred categories (comma-separated)")
	profileSetCmd.Flags().StringSliceVar(&flagSetSources, "sources", nil, "preferred sources (comma-separated)")
	profileCmd.AddCommand(profileSetCmd)
}

// checkKnown rejects values outside the configured enumeration. An empty
// enumeration accepts anything and leaves validation to the server.
func checkKnown(kind string, vals, known []string) error {
	if len(known) == 0 {
		return nil
	}
	for _, v := range vals {
		if !slices.Contains(known, v) {
			return fmt.Errorf("unknown %s %q (known: %s)", kind, v, strings.Join(known, ", "))
		}
	}
	return nil
}

func printProfile(w io.Writer, p prefs.Preferences, store *prefs.Store) {
	list := func(vals []string) string {
		if len(vals) == 0 {
			return "(any)"
		}
		return strings.Join(vals, ", ")
	}
	fmt.Fprintf(w, "Categories: %s\n", list(p.Categories))
	fmt.Fprintf(w, "Sources:    %s\n", list(p.Sources))
	if p.Empty() {
		fmt.Fprintln(w, "No preferences set; the feed is unfiltered.")
	}

	if store == nil {
		return
	}
	saved := store.Saved()
	if len(saved) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSaved articles (%d):\n", len(saved))
	for _, a := range saved {
		fmt.Fprintf(w, "  %s\n    %s\n", a.Title, a.URL)
	}
}
