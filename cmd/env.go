package cmd

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/config"
	"github.com/matheuskafuri/newsdash/internal/logging"
	"github.com/matheuskafuri/newsdash/internal/session"
)

var errNotLoggedIn = errors.New("not logged in; run `newsdash login` first")

// env is what every networked command needs.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
	client   *api.Client
	creds    *session.FileStore
	sessions *session.Bootstrapper
}

func setup() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel()
	if flagVerbose {
		level = zapcore.DebugLevel
	}
	log, closeLog, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Path:   cfg.LogPath(),
	})
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	client, err := api.New(api.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.RequestTimeoutDuration(),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    log,
	})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	creds := session.NewFileStore(session.DefaultPath())
	return &env{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		client:   client,
		creds:    creds,
		sessions: session.NewBootstrapper(creds, log),
	}, nil
}

func (e *env) Close() {
	_ = e.closeLog()
}

// activeSession resolves the stored credential for commands that need one.
func (e *env) activeSession() (session.Session, error) {
	tr, err := e.sessions.Bootstrap()
	if err != nil {
		return session.Session{}, fmt.Errorf("reading credentials: %w", err)
	}
	if tr.State != session.StateActive {
		return session.Session{}, errNotLoggedIn
	}
	return tr.Session, nil
}

// authHint points the user at login when the server rejected the token.
func authHint(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w; run `newsdash login` to sign in again", err)
	}
	return err
}
