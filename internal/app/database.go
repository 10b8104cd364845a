// Package app provides database initialization and setup.
package app

import (
	"context"
	"fmt"

	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/guttosm/casebreak-service/internal/repository"
	"github.com/guttosm/casebreak-service/internal/repository/memory"
	"github.com/guttosm/casebreak-service/internal/repository/postgres"
	"github.com/guttosm/casebreak-service/internal/service"
	"github.com/rs/zerolog/log"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	Store               *repository.Store
	StoreCircuitBreaker *circuitbreaker.CircuitBreaker
	// LoggingService and LogsCircuitBreaker are only set for the MongoDB driver,
	// which owns the logs collection.
	LoggingService     service.LoggingService
	LogsCircuitBreaker *circuitbreaker.CircuitBreaker
}

// Close releases the backend connection.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	return d.Store.Close(ctx)
}

// InitializeDatabase opens the backend selected by cfg.Driver and wraps it with
// a circuit breaker.
func InitializeDatabase(cfg config.DatabaseConfig) (*DatabaseComponents, error) {
	storeCB := newCircuitBreaker(cfg, "store", isStoreFailure)
	components := &DatabaseComponents{StoreCircuitBreaker: storeCB}

	var store *repository.Store
	switch cfg.Driver {
	case config.DriverMongoDB:
		db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

		if err := db.SetLogsTTL(context.Background(), cfg.LogsTTL); err != nil {
			log.Warn().Err(err).Dur("ttl", cfg.LogsTTL).Msg("Failed to set logs TTL index")
		}

		logsCB := newCircuitBreaker(cfg, "mongodb-logs", nil)
		logsRepo := repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB)
		components.LoggingService = service.NewLoggingService(logsRepo)
		components.LogsCircuitBreaker = logsCB

		store = repository.NewMongoStore(db)

	case config.DriverPostgres:
		db, err := postgres.Open(cfg.PostgresDSN, postgres.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info().Msg("Connected to PostgreSQL")
		store = postgres.NewStore(db)

	default:
		log.Warn().Msg("Using the in-memory store; data is lost on restart")
		store, _ = memory.NewRepositoryStore()
	}

	components.Store = repository.WithCircuitBreaker(store, storeCB)
	return components, nil
}

// isStoreFailure keeps business rejections raised inside a transaction from
// tripping the store breaker.
func isStoreFailure(err error) bool {
	return !service.IsDomainError(err) && repository.IsStoreFailure(err)
}

func newCircuitBreaker(cfg config.DatabaseConfig, name string, isFailure func(error) bool) *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
		IsFailure:        isFailure,
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
	metrics.SetCircuitBreakerState(name, int(circuitbreaker.StateClosed))
	return cb
}
