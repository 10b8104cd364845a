// Package postgres provides the relational store backend on gorm.
//
// Unit stock rows are locked with SELECT ... FOR UPDATE before they are changed,
// so concurrent reservations on the same product serialise on the row.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/casebreak-service/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DriverName identifies this backend in configuration.
const DriverName = "postgres"

type txKey struct{}

// Config holds connection pool settings.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// DefaultConfig returns pool settings sized like the MongoDB defaults.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    50,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		SlowThreshold:   200 * time.Millisecond,
	}
}

// DB wraps a gorm handle.
type DB struct {
	gorm *gorm.DB
}

// Open connects, configures the pool and migrates the schema.
func Open(dsn string, cfg Config) (*DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(gormWriter{}, logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := gdb.AutoMigrate(
		&productRow{},
		&unitProductRow{},
		&cartRow{},
		&cartLineRow{},
		&purchaseRow{},
		&purchaseItemRow{},
		&breakCaseRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return &DB{gorm: gdb}, nil
}

// conn returns the transaction carried by ctx, or the root handle.
func (d *DB) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return d.gorm.WithContext(ctx)
}

// WithinTransaction runs fn in a gorm transaction, joining an outer one if present.
func (d *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// inTx runs fn in the caller's transaction or a fresh one, so row locks hold until the write.
func (d *DB) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.WithinTransaction(ctx, func(ctx context.Context) error {
		return fn(d.conn(ctx))
	})
}

// HealthCheck pings the database.
func (d *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close closes the pool.
func (d *DB) Close(_ context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewStore exposes the gorm repositories as a repository.Store.
func NewStore(d *DB) *repository.Store {
	return repository.NewStore(
		DriverName,
		d,
		&productRepo{d},
		&inventoryRepo{d},
		&cartRepo{d},
		&purchaseRepo{d},
		&breakCaseRepo{d},
		d.HealthCheck,
		d.Close,
	)
}

// gormWriter routes gorm's logger into zerolog.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}
