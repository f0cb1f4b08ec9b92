package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/cinelist/internal/config"
	"github.com/mmcdole/cinelist/internal/launcher"
	"github.com/mmcdole/cinelist/internal/liststore"
	"github.com/mmcdole/cinelist/internal/notes"
	"github.com/mmcdole/cinelist/internal/omdb"
	"github.com/mmcdole/cinelist/internal/session"
	"github.com/mmcdole/cinelist/internal/store"
	"github.com/mmcdole/cinelist/internal/watchlist"
)

// app holds the wired components for one command invocation
type app struct {
	logger   *slog.Logger
	resolver *omdb.Client
	cache    *store.NotesStore
	wl       *watchlist.Watchlist
	opener   *launcher.Launcher
}

// newApp wires config into the watchlist stack
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	resolver := omdb.NewClient(cfg.OMDb.URL, cfg.OMDb.APIKey, cfg.OMDb.Timeout, logger)

	backend := liststore.NewClient(liststore.Config{
		BaseURL:    cfg.Backend.URL,
		Timeout:    cfg.Backend.Timeout,
		MaxRetries: cfg.Backend.MaxRetries,
	}, resolver, logger)

	cache, err := store.NewNotesStore(cfg.Cache.Path, cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("opening notes cache: %w", err)
	}

	sess := session.New(cfg.Session.Token, cfg.Session.Username)
	wl := watchlist.New(sess, backend, notes.NewManager(cache, backend, logger), resolver, logger)

	logger.Info("wired watchlist", "mode", wl.Mode(), "backend", cfg.Backend.URL)

	return &app{
		logger:   logger,
		resolver: resolver,
		cache:    cache,
		wl:       wl,
		opener:   launcher.New(cfg.Browser.Command, cfg.Browser.Args, logger),
	}, nil
}

func (a *app) Close() error {
	return a.cache.Close()
}

// openLink opens url with l and reports it on out
func openLink(out io.Writer, l *launcher.Launcher, url string) error {
	if err := l.Open(url); err != nil {
		return err
	}
	fmt.Fprintf(out, "Opened %s\n", url)
	return nil
}

// openApp builds the app from the resolved config
func openApp() (*app, error) {
	return newApp(resolvedCfg, buildLogger())
}
