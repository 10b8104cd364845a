// Package repository provides data access layer for MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// MongoDriverName identifies the MongoDB backend in configuration.
const MongoDriverName = "mongodb"

const (
	collProducts   = "products"
	collCarts      = "carts"
	collPurchases  = "purchases"
	collBreakCases = "break_case_requests"
	collLogs       = "logs"

	logsTTLIndex = "timestamp_ttl"
)

// MongoConfig sizes the client pool.
type MongoConfig struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	EnableCompression      bool
}

// DefaultMongoConfig returns the pool settings used by NewMongoDB.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		MaxPoolSize:            50,
		MinPoolSize:            5,
		MaxConnIdleTime:        5 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          30 * time.Second,
		EnableCompression:      true,
	}
}

func (c MongoConfig) clientOptions(uri string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(c.MaxPoolSize).
		SetMinPoolSize(c.MinPoolSize).
		SetMaxConnIdleTime(c.MaxConnIdleTime).
		SetConnectTimeout(c.ConnectTimeout).
		SetServerSelectionTimeout(c.ServerSelectionTimeout).
		SetSocketTimeout(c.SocketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if c.EnableCompression {
		opts.SetCompressors([]string{"zstd", "snappy"})
	}
	return opts
}

// MongoDB holds the client and the collections the store works on.
// Checkout and fulfillment need multi-document transactions, so the server must
// run as a replica set.
type MongoDB struct {
	Client     *mongo.Client
	Database   *mongo.Database
	Products   *mongo.Collection
	Carts      *mongo.Collection
	Purchases  *mongo.Collection
	BreakCases *mongo.Collection
	Logs       *mongo.Collection
}

// NewMongoDB connects with DefaultMongoConfig.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return NewMongoDBWithConfig(uri, databaseName, DefaultMongoConfig())
}

// NewMongoDBWithConfig connects, pings and ensures the indexes. The client is
// disconnected again if any of that fails.
func NewMongoDBWithConfig(uri, databaseName string, cfg MongoConfig) (_ *MongoDB, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err != nil {
			_ = client.Disconnect(context.Background())
		}
	}()

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:     client,
		Database:   db,
		Products:   db.Collection(collProducts),
		Carts:      db.Collection(collCarts),
		Purchases:  db.Collection(collPurchases),
		BreakCases: db.Collection(collBreakCases),
		Logs:       db.Collection(collLogs),
	}
	if err = m.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return m, nil
}

// indexSpec is one index the store relies on. Required indexes back a
// uniqueness rule; the rest only speed up listings and reports.
type indexSpec struct {
	collection func(*MongoDB) *mongo.Collection
	model      mongo.IndexModel
	required   bool
}

var indexSpecs = []indexSpec{
	{
		collection: func(m *MongoDB) *mongo.Collection { return m.Products },
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		required: true,
	},
	{
		collection: func(m *MongoDB) *mongo.Collection { return m.Products },
		model: mongo.IndexModel{
			Keys: bson.D{{Key: "unit_product.sku", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"unit_product.sku": bson.M{"$exists": true}}),
		},
		required: true,
	},
	{
		collection: func(m *MongoDB) *mongo.Collection { return m.Carts },
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		required: true,
	},
	{
		collection: func(m *MongoDB) *mongo.Collection { return m.Purchases },
		model:      mongo.IndexModel{Keys: bson.D{{Key: "purchased_at", Value: -1}}},
	},
	{
		collection: func(m *MongoDB) *mongo.Collection { return m.BreakCases },
		model:      mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	{
		collection: func(m *MongoDB) *mongo.Collection { return m.Logs },
		model:      mongo.IndexModel{Keys: bson.D{{Key: "request_id", Value: 1}}},
	},
	{
		collection: func(m *MongoDB) *mongo.Collection { return m.Logs },
		model:      mongo.IndexModel{Keys: bson.D{{Key: "action_type", Value: 1}, {Key: "timestamp", Value: -1}}},
	},
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	for _, spec := range indexSpecs {
		coll := spec.collection(m)
		if _, err := coll.Indexes().CreateOne(ctx, spec.model); err != nil {
			if spec.required {
				return fmt.Errorf("%s: %w", coll.Name(), err)
			}
			log.Warn().Err(err).Str("collection", coll.Name()).Msg("Skipping optional index")
		}
	}
	return nil
}

// SetLogsTTL makes log entries expire ttl after their timestamp. Any previous
// TTL index is replaced. A ttl under one second disables expiry.
func (m *MongoDB) SetLogsTTL(ctx context.Context, ttl time.Duration) error {
	if _, err := m.Logs.Indexes().DropOne(ctx, logsTTLIndex); err != nil && !isIndexNotFound(err) {
		return fmt.Errorf("drop logs ttl index: %w", err)
	}
	seconds := int32(ttl / time.Second)
	if seconds <= 0 {
		return nil
	}
	_, err := m.Logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().SetName(logsTTLIndex).SetExpireAfterSeconds(seconds),
	})
	if err != nil {
		return fmt.Errorf("create logs ttl index: %w", err)
	}
	return nil
}

// isIndexNotFound matches the server's IndexNotFound (27) and, for a logs
// collection that does not exist yet, NamespaceNotFound (26).
func isIndexNotFound(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.Code == 27 || cmdErr.Code == 26
}

// WithinTransaction runs fn in a session transaction. The driver retries fn on
// transient transaction errors, so fn must not leak side effects outside the store.
func (m *MongoDB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := m.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the primary.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}

// NewMongoStore exposes the MongoDB repositories as a Store.
func NewMongoStore(db *MongoDB) *Store {
	return NewStore(
		MongoDriverName,
		db,
		NewProductRepository(db),
		NewInventoryRepository(db),
		NewCartRepository(db),
		NewPurchaseRepository(db),
		NewBreakCaseRepository(db),
		db.HealthCheck,
		db.Close,
	)
}
