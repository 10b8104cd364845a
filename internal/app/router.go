// Package app provides router configuration.
package app

import (
	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/http"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter builds the handler, the readiness checks and the router
// configuration.
func InitializeRouter(
	services *ServiceComponents,
	db *DatabaseComponents,
	idem *IdempotencyComponents,
	cfg config.Config,
) *RouterComponents {
	handler := http.NewHandler(http.Services{
		Pricing:     services.Pricing,
		Catalog:     services.Catalog,
		Inventory:   services.Inventory,
		Carts:       services.Carts,
		Checkout:    services.Checkout,
		Fulfillment: services.Fulfillment,
		Purchases:   services.Purchases,
		Logging:     db.LoggingService,
	})

	healthHandler := http.NewHealthHandler()
	healthHandler.RegisterChecker("store", http.HealthCheckFunc(db.Store.HealthCheck))
	healthHandler.RegisterCircuitBreaker("store", db.StoreCircuitBreaker)
	if db.LogsCircuitBreaker != nil {
		healthHandler.RegisterCircuitBreaker("mongodb_logs", db.LogsCircuitBreaker, http.Advisory())
	}
	if services.NotifierCircuitBreaker != nil {
		healthHandler.RegisterCircuitBreaker("notifier", services.NotifierCircuitBreaker, http.Advisory())
	}

	routerCfg := http.RouterConfig{
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     cfg.Server.RateWindow,
		RequestTimeout: cfg.Server.RequestTimeout,
		EnableAuth:     cfg.Auth.Enabled,
		APIKeys:        cfg.Auth.APIKeys,
		JWTSecret:      []byte(cfg.Auth.JWTSecretKey),
		CORSOrigins:    cfg.Server.CORSOrigins,
		SwaggerUser:    cfg.Server.SwaggerUser,
		SwaggerPass:    cfg.Server.SwaggerPass,
		LoggingService: db.LoggingService,
	}
	if idem != nil {
		if idem.Redis != nil {
			healthHandler.RegisterChecker("redis", http.HealthCheckFunc(idem.Redis.Ping))
		}
		idemCfg := idem.Config
		routerCfg.Idempotency = &idemCfg
		routerCfg.RateLimitRedis = idem.RedisClient()
	}

	return &RouterComponents{
		Handler:       handler,
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
