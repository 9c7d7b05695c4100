package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheuskafuri/newsdash/internal/cache"
	"github.com/matheuskafuri/newsdash/internal/config"
	"github.com/matheuskafuri/newsdash/internal/session"
	"github.com/matheuskafuri/newsdash/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// History is best effort; the dashboard works without it.
	db, err := cache.Open(config.CachePath())
	if err != nil {
		e.log.Warn("history unavailable", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
		if n, err := db.Prune(e.cfg.RetentionDuration()); err != nil {
			e.log.Warn("pruning history failed", zap.Error(err))
		} else if n > 0 {
			e.log.Info("pruned history", zap.Int64("deleted", n))
		}
	}

	changes, err := session.Watch(ctx, e.creds.Path())
	if err != nil {
		e.log.Warn("not watching credentials", zap.Error(err))
		changes = nil
	}

	e.log.Info("starting dashboard", zap.String("api_url", e.cfg.APIURL))
	return tui.Run(ctx, tui.RunOpts{
		Cfg:               e.cfg,
		Client:            e.client,
		Sessions:          e.sessions,
		CredentialChanges: changes,
		DB:                db,
		Logger:            e.log,
	})
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
