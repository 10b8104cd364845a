package app

import (
	"time"

	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/service"
	"github.com/shopspring/decimal"
)

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			RateLimit:      100,
			RateWindow:     time.Minute,
			RequestTimeout: 5 * time.Second,
		},
		Cache: config.CacheConfig{Size: 100, TTL: time.Minute},
		Auth:  config.AuthConfig{JWTSecretKey: "test-secret"},
		Database: config.DatabaseConfig{
			Driver:                         config.DriverMemory,
			LogsTTL:                        24 * time.Hour,
			CircuitBreakerFailureThreshold: 5,
			CircuitBreakerSuccessThreshold: 2,
			CircuitBreakerTimeout:          time.Second,
		},
		Pricing: config.PricingConfig{
			PolicyVersion:    "2024-06",
			WholesaleDivisor: decimal.RequireFromString("1.53"),
			RetailMultiplier: decimal.RequireFromString("2.2"),
			Epsilon:          decimal.RequireFromString("0.01"),
		},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}
}

func checkoutInput(userID string) service.CheckoutInput {
	return service.CheckoutInput{
		UserID: userID,
		ShippingAddress: model.Address{
			Street1:    "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
		},
	}
}
