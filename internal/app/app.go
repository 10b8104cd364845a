// Package app provides application initialization and dependency injection.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/http"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/rs/zerolog/log"
)

// App is the wired application. Close releases everything it started.
type App struct {
	Router *gin.Engine

	Database    *DatabaseComponents
	Services    *ServiceComponents
	Idempotency *IdempotencyComponents
}

// InitializeApp creates and wires all application dependencies. A store that
// cannot be opened aborts startup.
func InitializeApp(cfg config.Config) (*App, error) {
	InitializeLogger(cfg.Log)

	db, err := InitializeDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	services, err := InitializeServices(cfg, db)
	if err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("initialize services: %w", err)
	}

	idem := InitializeIdempotency(cfg.Idempotency)

	if db.LoggingService != nil {
		middleware.InitAsyncLogger(db.LoggingService, asyncLoggerConfig(cfg.Log))
	}
	services.Digest.Start()

	rc := InitializeRouter(services, db, idem, cfg)

	return &App{
		Router:      http.NewRouter(rc.Handler, rc.HealthHandler, rc.Config),
		Database:    db,
		Services:    services,
		Idempotency: idem,
	}, nil
}

// Close stops background work first, then releases the connections it used.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if err := a.Services.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close services: %w", err))
	}
	middleware.StopAsyncLogger()
	if err := a.Idempotency.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close idempotency store: %w", err))
	}
	if err := a.Database.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Info().Msg("Application resources released")
	return nil
}
