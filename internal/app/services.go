// Package app provides service initialization.
package app

import (
	"context"
	"fmt"

	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
	"github.com/guttosm/casebreak-service/internal/notification"
	"github.com/guttosm/casebreak-service/internal/service"
	"github.com/rs/zerolog/log"
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Pricing     service.PricingService
	Catalog     service.CatalogService
	Inventory   service.InventoryService
	Carts       service.CartService
	Checkout    service.CheckoutService
	Fulfillment service.FulfillmentService
	Purchases   service.PurchaseService

	NotifierCircuitBreaker *circuitbreaker.CircuitBreaker
	Digest                 *notification.Digest

	kafka *notification.KafkaSink
}

// Close stops the digest and flushes the Kafka writer.
func (s *ServiceComponents) Close(_ context.Context) error {
	s.Digest.Stop()
	if s.kafka != nil {
		return s.kafka.Close()
	}
	return nil
}

// PricingPolicy converts the configured pricing constants into a policy.
func PricingPolicy(cfg config.PricingConfig) (service.PricingPolicy, error) {
	policy := service.PricingPolicy{
		Version:          cfg.PolicyVersion,
		WholesaleDivisor: cfg.WholesaleDivisor,
		RetailMultiplier: cfg.RetailMultiplier,
		Epsilon:          cfg.Epsilon,
	}
	if err := policy.Validate(); err != nil {
		return service.PricingPolicy{}, fmt.Errorf("pricing policy %q: %w", cfg.PolicyVersion, err)
	}
	return policy, nil
}

// InitializeServices wires the business services over db. The digest is
// created but not started.
func InitializeServices(cfg config.Config, db *DatabaseComponents) (*ServiceComponents, error) {
	policy, err := PricingPolicy(cfg.Pricing)
	if err != nil {
		return nil, err
	}

	pricingOpts := []service.PricingOption{service.WithPolicy(policy)}
	if cfg.Cache.Size > 0 {
		pricingOpts = append(pricingOpts, service.WithPriceCache(cfg.Cache.Size, cfg.Cache.TTL))
	}
	pricing := service.NewPricingService(pricingOpts...)

	sink, kafkaSink, notifierCB, err := initializeNotifier(cfg)
	if err != nil {
		return nil, err
	}

	store := db.Store
	ledger := service.NewInventoryService(store.Inventory)
	queue := service.NewFulfillmentService(store, ledger, service.WithFulfillmentNotifier(sink))

	return &ServiceComponents{
		Pricing:                pricing,
		Catalog:                service.NewCatalogService(store, pricing),
		Inventory:              ledger,
		Carts:                  service.NewCartService(store),
		Checkout:               service.NewCheckoutService(store, ledger, queue, service.WithCheckoutNotifier(sink)),
		Fulfillment:            queue,
		Purchases:              service.NewPurchaseService(store),
		NotifierCircuitBreaker: notifierCB,
		Digest:                 notification.NewDigest(queue, sink, cfg.Notification.DigestInterval),
		kafka:                  kafkaSink,
	}, nil
}

// initializeNotifier always logs events and also publishes them to Kafka when
// brokers are configured. Delivery goes through its own circuit breaker.
func initializeNotifier(cfg config.Config) (notification.Sink, *notification.KafkaSink, *circuitbreaker.CircuitBreaker, error) {
	sinks := notification.MultiSink{notification.NewLogSink(nil)}

	var kafkaSink *notification.KafkaSink
	if len(cfg.Notification.KafkaBrokers) > 0 {
		var err error
		kafkaSink, err = notification.NewKafkaSink(notification.KafkaConfig{
			Brokers: cfg.Notification.KafkaBrokers,
			Topic:   cfg.Notification.KafkaTopic,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("kafka notifier: %w", err)
		}
		sinks = append(sinks, kafkaSink)
		log.Info().Strs("brokers", cfg.Notification.KafkaBrokers).Str("topic", cfg.Notification.KafkaTopic).Msg("Publishing events to Kafka")
	}

	cb := newCircuitBreaker(cfg.Database, "notifier", nil)
	return notification.NewBreakerSink(sinks, cb), kafkaSink, cb, nil
}
