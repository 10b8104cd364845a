//go:build integration

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guttosm/casebreak-service/config"
	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseCheckout runs one shortfall checkout and processes the resulting request.
func exerciseCheckout(t *testing.T, a *App) {
	t.Helper()
	ctx := context.Background()

	p, err := a.Services.Catalog.CreateProduct(ctx, model.ProductDraft{
		SKU:             "FW-400",
		Title:           "Golden Willow",
		CasePrice:       decimal.RequireFromString("84.99"),
		Package:         []int{8},
		IsCaseBreakable: true,
	})
	require.NoError(t, err)

	_, err = a.Services.Carts.SetLine(ctx, "user-1", p.ID, 0, 5)
	require.NoError(t, err)

	_, err = a.Services.Checkout.Checkout(ctx, checkoutInput("user-1"))
	require.NoError(t, err)

	open, err := a.Services.Fulfillment.OpenRequests(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 5, open[0].Quantity)

	updated, err := a.Services.Fulfillment.Process(ctx, open[0].ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.NewTotalStock)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestInitializeApp_MongoDB(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = config.DriverMongoDB
	cfg.Database.URI = testutil.GetSharedContainerURI()
	cfg.Database.DatabaseName = testutil.SanitizeDBName(t.Name())

	a, err := InitializeApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	assert.NotNil(t, a.Database.LoggingService)
	assert.NotNil(t, a.Database.LogsCircuitBreaker)
	exerciseCheckout(t, a)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/audit-logs?limit=5", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"limit":5`)
}

func TestInitializeApp_Postgres(t *testing.T) {
	ctx := context.Background()
	pg, err := testutil.SetupPostgres(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Cleanup(ctx) })

	cfg := testConfig()
	cfg.Database.Driver = config.DriverPostgres
	cfg.Database.PostgresDSN = pg.DSN

	a, err := InitializeApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	assert.Nil(t, a.Database.LoggingService)
	exerciseCheckout(t, a)
}

func TestInitializeApp_RedisIdempotency(t *testing.T) {
	ctx := context.Background()
	rc, err := testutil.SetupRedis(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Cleanup(ctx) })

	cfg := testConfig()
	cfg.Idempotency.RedisAddr = rc.Addr

	a, err := InitializeApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	require.NotNil(t, a.Idempotency.Redis)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"redis"`))
}

func TestInitializeApp_UnreachableMongoDB(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = config.DriverMongoDB
	cfg.Database.URI = "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=500&connectTimeoutMS=500"
	cfg.Database.DatabaseName = "unreachable"

	a, err := InitializeApp(cfg)

	assert.Error(t, err)
	assert.Nil(t, a)
}
