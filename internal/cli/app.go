// Package cli defines the notifeed command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"notifeed/internal/config"
	"notifeed/internal/fetch"
	"notifeed/internal/notify"
	"notifeed/internal/service"
	"notifeed/internal/storage/sqlite"
)

func New() *cli.App {
	return &cli.App{
		Name:  "notifeed",
		Usage: "Watch RSS/Atom feeds and notify channels about new posts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the config file",
				EnvVars: []string{"NOTIFEED_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "path to the sqlite database (overrides config)",
				EnvVars: []string{"NOTIFEED_DB"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "show debug log messages",
			},
		},
		Commands: []*cli.Command{
			runCmd(),
			addCmd(),
			deleteCmd(),
			listCmd(),
			setCmd(),
			getCmd(),
			testCmd(),
		},
	}
}

// env bundles everything a command needs: config, logger, database
// handle and the stores built on it.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	feeds     *sqlite.FeedStore
	channels  *sqlite.ChannelStore
	bindings  *sqlite.BindingStore
	seen      *sqlite.SeenStore
	settings  *sqlite.SettingStore
	txManager *sqlite.TransactionManager

	fetcher  *fetch.Fetcher
	registry *notify.Registry
	router   *service.Router
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path := c.String("db"); path != "" {
		cfg.Database.Path = path
	}
	if c.Bool("debug") {
		cfg.LogLevel = "debug"
	}

	logger := setupLogger(cfg.LogLevel)

	db, err := sqlite.Open(sqlite.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := &env{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		feeds:     sqlite.NewFeedStore(db),
		channels:  sqlite.NewChannelStore(db),
		bindings:  sqlite.NewBindingStore(db),
		seen:      sqlite.NewSeenStore(db),
		settings:  sqlite.NewSettingStore(db),
		txManager: sqlite.NewTransactionManager(db),
	}

	e.fetcher = fetch.New(fetch.Config{
		Timeout:        cfg.Fetch.Timeout,
		MaxAttempts:    cfg.Fetch.Retry.MaxAttempts,
		InitialBackoff: cfg.Fetch.Retry.InitialBackoff,
		MaxBackoff:     cfg.Fetch.Retry.MaxBackoff,
	}, logger)
	e.registry = notify.NewRegistry(cfg.Dispatch.SendTimeout)
	e.router = service.NewRouter(
		e.bindings,
		e.channels,
		e.feeds,
		e.fetcher,
		e.registry,
		logger,
		cfg.Dispatch.MaxConcurrent,
	)

	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
