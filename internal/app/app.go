// Package app assembles the collaborators shared by the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/publish"
	"github.com/xtding233/diamond-sim/internal/service"
	"github.com/xtding233/diamond-sim/internal/store"
)

// NewLogger returns a timestamped logger at the named level.
func NewLogger(w io.Writer, level, prefix string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           lvl,
		Prefix:          prefix,
	}), nil
}

// App owns the long-lived resources behind a Service.
type App struct {
	Env       config.Env
	Logger    *log.Logger
	Loader    *config.Loader
	Store     *store.Store
	Publisher *publish.RedisPublisher
	Service   *service.Service
}

// Open loads the prediction models and connects the store and, when
// configured, the result publisher.
func Open(ctx context.Context, env config.Env, logger *log.Logger) (*App, error) {
	loader := config.NewLoader(env.DataDir)
	set, version, err := predictor.LoadFile(loader.Paths().ModelsPath())
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	logger.Info("models loaded", "version", version)

	st, err := store.Open(ctx, env.DBDriver, env.DBDSN)
	if err != nil {
		return nil, err
	}
	a := &App{Env: env, Logger: logger, Loader: loader, Store: st}

	if env.RedisURL != "" {
		pub, err := publish.Connect(ctx, env.RedisURL, env.ResultTTL)
		if err != nil {
			st.Close()
			return nil, err
		}
		a.Publisher = pub
		logger.Info("publishing results to redis", "ttl", env.ResultTTL)
	}

	a.Service, err = service.New(service.Options{
		Loader:    loader,
		Predictor: set,
		Store:     st,
		Publisher: a.Publisher,
		Logger:    logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
