// Package app wires configuration, stores, services and transport together.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/broker"
	"finboard/internal/config"
	"finboard/internal/config/loader"
	"finboard/internal/gateway/oanda"
	"finboard/internal/logger"
	"finboard/internal/signal"
	"finboard/internal/store/gormstore"
	"finboard/internal/store/sessiondb"
	transporthttp "finboard/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

// sessionPurgeInterval bounds how long expired sessions linger on disk.
const sessionPurgeInterval = time.Hour

// oandaOptions maps the broker section of the config onto client options.
func oandaOptions(cfg config.OandaConfig) oanda.Options {
	return oanda.Options{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Defaults: oanda.QueryDefaults{
			Instrument:  cfg.DefaultInstrument,
			Granularity: cfg.DefaultGranularity,
			CandleCount: cfg.DefaultCandleCount,
		},
	}
}

// App owns the long-lived pieces: the two stores and the HTTP server.
type App struct {
	cfg       *config.Config
	store     *gormstore.GormStore
	sessions  *sessiondb.SessionStore
	watchlist *loader.WatchlistLoader
	httpSrv   *transporthttp.Server
}

// NewApp builds the application from config without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	store, err := gormstore.NewGormStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database failed: %w", err)
	}
	sessions, err := sessiondb.NewSessionStore(cfg.Database.SessionPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening session store failed: %w", err)
	}

	var watchlist *loader.WatchlistLoader
	if path := strings.TrimSpace(cfg.Oanda.WatchlistPath); path != "" {
		watchlist, err = loader.NewWatchlistLoader(path)
		if err != nil {
			logger.Warnf("watchlist disabled: %v", err)
			watchlist = nil
		}
	}

	brokerSvc := broker.NewService(broker.NewResolver(store, oandaOptions(cfg.Oanda)))
	signalSvc := signal.NewService(store)

	httpSrv, err := transporthttp.NewServer(transporthttp.ServerConfig{
		Addr:       cfg.App.HTTPAddr,
		Broker:     brokerSvc,
		Signals:    signalSvc,
		Sessions:   sessions,
		Users:      store,
		SessionTTL: time.Duration(cfg.Session.TTLHours) * time.Hour,
		Watchlist:  watchlist,
	})
	if err != nil {
		sessions.Close()
		store.Close()
		return nil, fmt.Errorf("building http server failed: %w", err)
	}

	return &App{
		cfg:       cfg,
		store:     store,
		sessions:  sessions,
		watchlist: watchlist,
		httpSrv:   httpSrv,
	}, nil
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.httpSrv == nil {
		return fmt.Errorf("app not initialized")
	}
	logger.Infof("finboard listening on %s (env=%s)", a.httpSrv.Addr(), a.cfg.App.Env)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.httpSrv.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		a.purgeSessionsLoop(ctx)
		return nil
	})

	err := group.Wait()
	a.Close()
	return err
}

func (a *App) purgeSessionsLoop(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := a.sessions.PurgeExpired(ctx); err != nil {
				logger.Warnf("session purge failed: %v", err)
			} else if n > 0 {
				logger.Debugf("purged %d expired sessions", n)
			}
		}
	}
}

// Close releases store handles.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.watchlist != nil {
		a.watchlist.Close()
	}
	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
