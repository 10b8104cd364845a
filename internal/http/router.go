package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/i18n"
	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/guttosm/casebreak-service/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
	// EnableAuth puts customer routes behind bearer tokens and admin routes
	// behind APIKeys.
	EnableAuth     bool
	APIKeys        map[string]bool
	JWTSecret      []byte
	CORSOrigins    []string
	SwaggerUser    string
	SwaggerPass    string
	LoggingService service.LoggingService
	// Idempotency enables replay protection on checkout when non-nil.
	Idempotency *middleware.IdempotencyConfig
	// RateLimitRedis shares rate limit windows between replicas. Nil keeps
	// them in process memory.
	RateLimitRedis redis.UniversalClient

	userLimiter *middleware.RateLimiter
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:      100,
		RateWindow:     time.Minute,
		RequestTimeout: 30 * time.Second,
		EnableAuth:     false,
	}
}

// NewRouter builds the engine: global middleware, infrastructure endpoints,
// then the storefront and admin groups under /api. A nil handler leaves only
// the infrastructure endpoints.
func NewRouter(handler *Handler, healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.ContextWithFallback = true
	router.HandleMethodNotAllowed = true

	router.Use(globalMiddleware(&cfg)...)
	registerInfrastructureRoutes(router, healthHandler, &cfg)

	router.NoRoute(func(c *gin.Context) {
		NewResponseBuilder(c).Error(http.StatusNotFound, i18n.ErrKeyNotFound, nil)
	})
	router.NoMethod(func(c *gin.Context) {
		NewResponseBuilder(c).Error(http.StatusMethodNotAllowed, i18n.ErrKeyMethodNotAllowed, nil)
	})

	if handler != nil {
		api := router.Group("/api")
		if cfg.RequestTimeout > 0 {
			api.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		for _, g := range []RouteGroup{NewStorefrontRoutes(handler), NewAdminRoutes(handler)} {
			g.RegisterRoutes(api, &cfg)
		}
	}
	return router
}

// globalMiddleware returns the chain every request runs through, outermost
// first. A positive RateLimit adds a per-IP limiter here and prepares the
// per-user limiter the storefront group applies.
func globalMiddleware(cfg *RouterConfig) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(cfg.LoggingService),
		middleware.ErrorHandler(),
	}
	if cfg.RateLimit > 0 {
		chain = append(chain, cfg.newRateLimiter("ip").RateLimit())
		cfg.userLimiter = cfg.newRateLimiter("user")
	}
	return chain
}

func (cfg *RouterConfig) newRateLimiter(scope string) *middleware.RateLimiter {
	if cfg.RateLimitRedis == nil {
		return middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}
	counter := middleware.NewRedisWindowCounter(cfg.RateLimitRedis, scope, cfg.RateLimit, cfg.RateWindow)
	return middleware.NewCounterRateLimiter(counter, cfg.RateLimit)
}

// registerInfrastructureRoutes mounts the probes, the Prometheus scrape
// endpoint and the Swagger UI, the latter behind basic auth when credentials
// are configured.
func registerInfrastructureRoutes(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	if healthHandler != nil {
		healthHandler.Register(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docs := router.Group("/swagger")
	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		docs.Use(gin.BasicAuth(gin.Accounts{cfg.SwaggerUser: cfg.SwaggerPass}))
	}
	docs.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
