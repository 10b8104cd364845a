package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(PrometheusMiddleware())
	router.GET("/api/products/:id/stock", func(c *gin.Context) { c.String(http.StatusOK, "12") })
	router.GET("/api/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	tests := []struct {
		name   string
		path   string
		route  string
		status string
	}{
		{"labels by route template", "/api/products/p-1/stock", "/api/products/:id/stock", "200"},
		{"records server errors", "/api/boom", "/api/boom", "500"},
		{"folds unknown paths", "/wp-admin/install.php", unmatchedRoute, "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := HTTPRequestTotal.WithLabelValues(http.MethodGet, tt.route, tt.status)
			before := testutil.ToFloat64(counter)

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
			assert.Zero(t, testutil.ToFloat64(HTTPRequestsInFlight))
		})
	}
}

func TestRecordReservation(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		reserved  int
		result    string
	}{
		{"covered by stock", 5, 5, "full"},
		{"partly covered", 10, 4, "partial"},
		{"no stock", 3, 0, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(UnitReservationsTotal.WithLabelValues(tt.result))
			RecordReservation(tt.requested, tt.reserved)
			assert.Equal(t, before+1, testutil.ToFloat64(UnitReservationsTotal.WithLabelValues(tt.result)))
		})
	}
}

func TestRecordCheckout(t *testing.T) {
	before := testutil.ToFloat64(CheckoutsTotal.WithLabelValues("success"))
	RecordCheckout(100*time.Millisecond, "success")
	assert.Equal(t, before+1, testutil.ToFloat64(CheckoutsTotal.WithLabelValues("success")))
}

func TestDomainCounters(t *testing.T) {
	RecordCaseBreakRequest("created")
	RecordUnitPricePreview("success")
	RecordNotification("purchase.completed", "success")

	assert.GreaterOrEqual(t, testutil.ToFloat64(CaseBreakRequestsTotal.WithLabelValues("created")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(UnitPricePreviewsTotal.WithLabelValues("success")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(NotificationsTotal.WithLabelValues("purchase.completed", "success")), 1.0)
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("store", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("store")))
	SetCircuitBreakerState("store", 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("store")))
}

func TestRecordCacheOperation(t *testing.T) {
	before := testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "hit"))
	RecordCacheOperation("get", "hit")
	assert.Equal(t, before+1, testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "hit")))
}

func TestUpdateCacheMetrics(t *testing.T) {
	UpdateCacheMetrics(75, 100)

	assert.Equal(t, 75.0, testutil.ToFloat64(CacheSize))
	assert.Equal(t, 100.0, testutil.ToFloat64(CacheCapacity))
}
