package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/analemma/internal/controllers/restserver"
	"github.com/chrissnell/analemma/internal/log"
	"github.com/chrissnell/analemma/internal/warmer"
	"github.com/chrissnell/analemma/pkg/config"
	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/eot"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Services builds the engine objects described by cfg
func Services(cfg *config.ConfigData, logger *zap.SugaredLogger) (restserver.Services, error) {
	provider, err := ephemeris.New(cfg.Ephemeris.Backend)
	if err != nil {
		return restserver.Services{}, err
	}

	resolver := subpoint.NewResolver(provider)
	engine := eot.NewEngine(resolver, eot.WithLogger(logger))

	return restserver.Services{
		Backend:     cfg.Ephemeris.Backend,
		Resolver:    resolver,
		Series:      eot.NewSeriesCache(engine, cfg.Cache.Capacity),
		Declination: eot.NewDeclinationCache(resolver),
	}, nil
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	services, err := Services(cfg, a.logger)
	if err != nil {
		return err
	}

	// Start the cache warmer
	w, err := warmer.New(services.Series, services.Declination, cfg.Cache.WarmSchedule, cfg.Cache.WarmYearsAhead, a.logger)
	if err != nil {
		return err
	}
	w.Start(ctx, &wg)

	// Start the REST server
	rest, err := restserver.NewController(ctx, &wg, cfg.Server, services, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Infow("Application started successfully", "backend", cfg.Ephemeris.Backend, "cache_capacity", services.Series.Capacity())

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
