package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// HealthChecker reports whether a dependency can serve traffic.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error { return f(ctx) }

// ProbeOption tunes how a registered dependency affects readiness.
type ProbeOption func(*probe)

// Advisory reports the dependency in /readyz without letting it fail the
// probe. Use it for best-effort paths such as notifications and log storage.
func Advisory() ProbeOption {
	return func(p *probe) { p.advisory = true }
}

type probe struct {
	key      string
	run      func(ctx context.Context) (state string, healthy bool)
	advisory bool
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	mu     sync.RWMutex
	probes []probe
}

// NewHealthHandler creates a HealthHandler with nothing registered.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// RegisterChecker adds a dependency reported under name as "ok" or its error.
func (h *HealthHandler) RegisterChecker(name string, checker HealthChecker, opts ...ProbeOption) {
	h.add(probe{key: name, run: func(ctx context.Context) (string, bool) {
		if err := checker.Check(ctx); err != nil {
			return err.Error(), false
		}
		return "ok", true
	}}, opts)
}

// RegisterCircuitBreaker reports cb's state under name + "_circuit". An open
// circuit is unhealthy.
func (h *HealthHandler) RegisterCircuitBreaker(name string, cb *circuitbreaker.CircuitBreaker, opts ...ProbeOption) {
	h.add(probe{key: name + "_circuit", run: func(context.Context) (string, bool) {
		stats := cb.GetStats()
		return stats.State, stats.IsHealthy
	}}, opts)
}

func (h *HealthHandler) add(p probe, opts []ProbeOption) {
	for _, opt := range opts {
		opt(&p)
	}
	h.mu.Lock()
	h.probes = append(h.probes, p)
	h.mu.Unlock()
}

// Register mounts /healthz and /readyz.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness probe endpoint.
// @Summary     Liveness probe
// @Description Returns OK if the process is running.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles the readiness probe endpoint.
// @Summary     Readiness probe
// @Description Runs every dependency check concurrently. Returns 503 when the store, the idempotency backend or a required circuit breaker is unhealthy; advisory dependencies are reported only.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]interface{} "Service is ready"
// @Failure     503 {object} map[string]interface{} "Service is not ready"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	h.mu.RLock()
	probes := append([]probe(nil), h.probes...)
	h.mu.RUnlock()

	type result struct {
		state   string
		healthy bool
	}
	results := make([]result, len(probes))

	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
			defer cancel()
			state, healthy := p.run(ctx)
			results[i] = result{state, healthy}
		}()
	}
	wg.Wait()

	ready := true
	checks := make(map[string]string, len(probes)+1)
	for i, p := range probes {
		checks[p.key] = results[i].state
		if !results[i].healthy && !p.advisory {
			ready = false
		}
	}
	if len(checks) == 0 {
		checks["service"] = "ok"
	}

	status, label := http.StatusOK, "ok"
	if !ready {
		status, label = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(status, gin.H{"status": label, "checks": checks})
}
