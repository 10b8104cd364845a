package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/guttosm/casebreak-service/internal/mocks"
	"github.com/guttosm/casebreak-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerMocks struct {
	pricing     *mocks.MockPricingService
	catalog     *mocks.MockCatalogService
	inventory   *mocks.MockInventoryService
	carts       *mocks.MockCartService
	checkout    *mocks.MockCheckoutService
	fulfillment *mocks.MockFulfillmentService
	purchases   *mocks.MockPurchaseService
}

func (m *handlerMocks) assertExpectations(t *testing.T) {
	m.pricing.AssertExpectations(t)
	m.catalog.AssertExpectations(t)
	m.inventory.AssertExpectations(t)
	m.carts.AssertExpectations(t)
	m.checkout.AssertExpectations(t)
	m.fulfillment.AssertExpectations(t)
	m.purchases.AssertExpectations(t)
}

func setupRouterWithMocks(t *testing.T, cfg RouterConfig) (*gin.Engine, *handlerMocks) {
	t.Helper()
	m := &handlerMocks{
		pricing:     &mocks.MockPricingService{},
		catalog:     &mocks.MockCatalogService{},
		inventory:   &mocks.MockInventoryService{},
		carts:       &mocks.MockCartService{},
		checkout:    &mocks.MockCheckoutService{},
		fulfillment: &mocks.MockFulfillmentService{},
		purchases:   &mocks.MockPurchaseService{},
	}
	handler := NewHandler(Services{
		Pricing:     m.pricing,
		Catalog:     m.catalog,
		Inventory:   m.inventory,
		Carts:       m.carts,
		Checkout:    m.checkout,
		Fulfillment: m.fulfillment,
		Purchases:   m.purchases,
	})
	t.Cleanup(func() { m.assertExpectations(t) })
	return NewRouter(handler, NewHealthHandler(), cfg), m
}

func doRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into out.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data      json.RawMessage `json:"data"`
		RequestID string          `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.RequestID)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*handlerMocks)
		expectedStatus int
		check          func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "returns the derived unit price",
			body: `{"case_price": "84.99", "units_per_case": 8}`,
			setup: func(m *handlerMocks) {
				m.pricing.On("UnitPrice", mock.Anything, 8).Return(decimal.RequireFromString("15.99"), nil)
				m.pricing.On("Policy").Return(service.DefaultPricingPolicy())
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.UnitPriceResponse
				decodeData(t, w, &resp)
				assert.Equal(t, "2024-06", resp.PolicyVersion)
				assert.Equal(t, 8, resp.UnitsPerCase)
				assert.True(t, resp.UnitPrice.Equal(decimal.RequireFromString("15.99")))
			},
		},
		{
			name:           "malformed JSON",
			body:           `{"case_price": }`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation failure names the field",
			body:           `{"case_price": "84.99", "units_per_case": 0}`,
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, dto.ErrCodeInvalidRequest, resp.Error)
				assert.Equal(t, "units_per_case", resp.Details["field"])
			},
		},
		{
			name: "pricing rejection",
			body: `{"case_price": "0.01", "units_per_case": 8}`,
			setup: func(m *handlerMocks) {
				m.pricing.On("UnitPrice", mock.Anything, 8).Return(decimal.Zero, service.ErrInvalidPricingInput)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupRouterWithMocks(t, DefaultRouterConfig())
			if tt.setup != nil {
				tt.setup(m)
			}

			w := doRequest(router, http.MethodPost, "/api/pricing/unit-price", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, w)
			}
		})
	}
}

func TestProducts(t *testing.T) {
	product := &model.Product{
		ID:              "p-1",
		SKU:             "FW-1",
		Title:           "Sky Thunder",
		CasePrice:       decimal.RequireFromString("84.99"),
		Package:         []int{8, 1},
		IsCaseBreakable: true,
		UnitProduct:     &model.UnitProduct{SKU: "FW-1-u", UnitPrice: decimal.RequireFromString("15.99"), Package: []int{1, 1}},
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(*handlerMocks)
		expectedStatus int
	}{
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/api/products",
			body:   `{"sku": "FW-1", "title": "Sky Thunder", "case_price": "84.99", "package": [8, 1], "is_case_breakable": true}`,
			setup: func(m *handlerMocks) {
				m.catalog.On("CreateProduct", mock.Anything, mock.MatchedBy(func(d model.ProductDraft) bool {
					return d.SKU == "FW-1" && d.IsCaseBreakable
				})).Return(product, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "create with duplicate sku",
			method: http.MethodPost,
			path:   "/api/products",
			body:   `{"sku": "FW-1", "title": "Sky Thunder", "case_price": "84.99", "package": [8]}`,
			setup: func(m *handlerMocks) {
				m.catalog.On("CreateProduct", mock.Anything, mock.Anything).Return(nil, service.ErrDuplicateSKU)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "create with invalid package",
			method:         http.MethodPost,
			path:           "/api/products",
			body:           `{"sku": "FW-1", "title": "Sky Thunder", "case_price": "84.99", "package": [0]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/api/products/p-1",
			setup: func(m *handlerMocks) {
				m.catalog.On("GetProduct", mock.Anything, "p-1").Return(product, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get unknown",
			method: http.MethodGet,
			path:   "/api/products/missing",
			setup: func(m *handlerMocks) {
				m.catalog.On("GetProduct", mock.Anything, "missing").Return(nil, fmt.Errorf("get: %w", service.ErrProductNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "patch",
			method: http.MethodPatch,
			path:   "/api/products/p-1",
			body:   `{"is_case_breakable": false}`,
			setup: func(m *handlerMocks) {
				m.catalog.On("UpdateProduct", mock.Anything, "p-1", mock.MatchedBy(func(p model.ProductPatch) bool {
					return p.IsCaseBreakable != nil && !*p.IsCaseBreakable
				})).Return(product, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "stock",
			method: http.MethodGet,
			path:   "/api/inventory/p-1",
			setup: func(m *handlerMocks) {
				m.inventory.On("GetAvailableStock", mock.Anything, "p-1").Return(12, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "stock of a product without units",
			method: http.MethodGet,
			path:   "/api/inventory/p-2",
			setup: func(m *handlerMocks) {
				m.inventory.On("GetAvailableStock", mock.Anything, "p-2").Return(0, service.ErrProductHasNoUnitInventory)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupRouterWithMocks(t, DefaultRouterConfig())
			if tt.setup != nil {
				tt.setup(m)
			}

			w := doRequest(router, tt.method, tt.path, tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetStock_Response(t *testing.T) {
	router, m := setupRouterWithMocks(t, DefaultRouterConfig())
	m.inventory.On("GetAvailableStock", mock.Anything, "p-1").Return(7, nil)

	w := doRequest(router, http.MethodGet, "/api/inventory/p-1", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.StockResponse
	decodeData(t, w, &resp)
	assert.Equal(t, dto.StockResponse{ProductID: "p-1", AvailableStock: 7}, resp)
}

func TestCart(t *testing.T) {
	cart := &model.Cart{ID: "c-1", UserID: "user-1", Lines: []model.CartLine{{ProductID: "p-1", UnitQuantity: 4}}}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(*handlerMocks)
		expectedStatus int
	}{
		{
			name:   "get by query user",
			method: http.MethodGet,
			path:   "/api/cart?user_id=user-1",
			setup: func(m *handlerMocks) {
				m.carts.On("GetCart", mock.Anything, "user-1").Return(cart, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get without a user",
			method: http.MethodGet,
			path:   "/api/cart",
			setup: func(m *handlerMocks) {
				m.carts.On("GetCart", mock.Anything, "").Return(nil, service.ErrMissingUser)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "set line",
			method: http.MethodPut,
			path:   "/api/cart/lines",
			body:   `{"user_id": "user-1", "product_id": "p-1", "case_quantity": 0, "unit_quantity": 4}`,
			setup: func(m *handlerMocks) {
				m.carts.On("SetLine", mock.Anything, "user-1", "p-1", 0, 4).Return(cart, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "negative quantity",
			method:         http.MethodPut,
			path:           "/api/cart/lines",
			body:           `{"user_id": "user-1", "product_id": "p-1", "unit_quantity": -1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "units of a product without unit inventory",
			method: http.MethodPut,
			path:   "/api/cart/lines",
			body:   `{"user_id": "user-1", "product_id": "p-9", "unit_quantity": 2}`,
			setup: func(m *handlerMocks) {
				m.carts.On("SetLine", mock.Anything, "user-1", "p-9", 0, 2).Return(nil, service.ErrProductHasNoUnitInventory)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupRouterWithMocks(t, DefaultRouterConfig())
			if tt.setup != nil {
				tt.setup(m)
			}

			w := doRequest(router, tt.method, tt.path, tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

const checkoutBody = `{
	"user_id": "user-1",
	"shipping_address": {"street1": "1 Main St", "city": "Springfield", "state": "IL", "postal_code": "62701"},
	"tax": "7.25",
	"shipping": "19.99"
}`

func TestCheckout(t *testing.T) {
	purchase := &model.PurchaseRecord{
		ID:         "pur-1",
		UserID:     "user-1",
		Items:      []model.PurchaseItem{{ProductID: "p-1", Quantity: 10, Kind: model.ItemKindUnit, ItemSubtotal: decimal.RequireFromString("159.90")}},
		Subtotal:   decimal.RequireFromString("159.90"),
		GrandTotal: decimal.RequireFromString("187.14"),
		Status:     model.PurchaseStatusPending,
	}

	tests := []struct {
		name           string
		body           string
		setup          func(*handlerMocks)
		expectedStatus int
		check          func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "creates the purchase",
			body: checkoutBody,
			setup: func(m *handlerMocks) {
				m.checkout.On("Checkout", mock.Anything, mock.MatchedBy(func(in service.CheckoutInput) bool {
					return in.UserID == "user-1" &&
						in.ShippingAddress.City == "Springfield" &&
						in.Adjustments.Tax.Equal(decimal.RequireFromString("7.25"))
				})).Return(purchase, nil)
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var got model.PurchaseRecord
				decodeData(t, w, &got)
				assert.Equal(t, "pur-1", got.ID)
				require.Len(t, got.Items, 1)
				assert.Equal(t, 10, got.Items[0].Quantity)
			},
		},
		{
			name:           "incomplete address",
			body:           `{"user_id": "user-1", "shipping_address": {"city": "Springfield"}}`,
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "shipping_address", decodeError(t, w).Details["field"])
			},
		},
		{
			name: "empty cart",
			body: checkoutBody,
			setup: func(m *handlerMocks) {
				m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, service.ErrCartEmpty)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "failing line is reported",
			body: checkoutBody,
			setup: func(m *handlerMocks) {
				m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil,
					fmt.Errorf("checkout: %w", &service.CheckoutError{Line: 2, ProductID: "p-9", Err: service.ErrProductNotFound}))
			},
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, dto.ErrCodeNotFound, resp.Error)
				assert.Equal(t, "2", resp.Details["line"])
				assert.Equal(t, "p-9", resp.Details["product_id"])
			},
		},
		{
			name: "store unavailable",
			body: checkoutBody,
			setup: func(m *handlerMocks) {
				m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, circuitbreaker.ErrCircuitOpen)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupRouterWithMocks(t, DefaultRouterConfig())
			if tt.setup != nil {
				tt.setup(m)
			}

			w := doRequest(router, http.MethodPost, "/api/checkout", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, w)
			}
		})
	}
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	idem := middleware.DefaultIdempotencyConfig()
	cfg := DefaultRouterConfig()
	cfg.Idempotency = &idem
	router, m := setupRouterWithMocks(t, cfg)

	m.checkout.On("Checkout", mock.Anything, mock.Anything).
		Return(&model.PurchaseRecord{ID: "pur-1", Status: model.PurchaseStatusPending}, nil).Once()

	headers := map[string]string{middleware.IdempotencyKeyHeader: "order-42"}
	first := doRequest(router, http.MethodPost, "/api/checkout", checkoutBody, headers)
	second := doRequest(router, http.MethodPost, "/api/checkout", checkoutBody, headers)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestCaseBreakReports(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(*handlerMocks)
		expectedStatus int
	}{
		{
			name:   "report with filters",
			method: http.MethodGet,
			path:   "/api/reports/case-break?startDate=2024-06-01&endDate=2024-06-30&status=open",
			setup: func(m *handlerMocks) {
				m.fulfillment.On("Report", mock.Anything, mock.MatchedBy(func(f model.BreakCaseFilter) bool {
					return f.Status == model.RequestStatusOpen && f.From != nil && f.To != nil && f.To.Day() == 30
				})).Return(&model.CaseBreakReport{Count: 1, TotalQuantity: 6}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad date",
			method:         http.MethodGet,
			path:           "/api/reports/case-break?startDate=yesterday",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad status",
			method:         http.MethodGet,
			path:           "/api/reports/case-break?status=DONE",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "process",
			method: http.MethodPost,
			path:   "/api/reports/case-break/r-1/process",
			body:   `{"quantity_added": 8}`,
			setup: func(m *handlerMocks) {
				m.fulfillment.On("Process", mock.Anything, "r-1", 8).
					Return(&model.UpdatedStock{RequestID: "r-1", ProductID: "p-1", AddedQuantity: 8, NewTotalStock: 8}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "process with zero units",
			method:         http.MethodPost,
			path:           "/api/reports/case-break/r-1/process",
			body:           `{"quantity_added": 0}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "process twice",
			method: http.MethodPost,
			path:   "/api/reports/case-break/r-1/process",
			body:   `{"quantity_added": 8}`,
			setup: func(m *handlerMocks) {
				m.fulfillment.On("Process", mock.Anything, "r-1", 8).Return(nil, service.ErrRequestAlreadyCompleted)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "process unknown request",
			method: http.MethodPost,
			path:   "/api/reports/case-break/nope/process",
			body:   `{"quantity_added": 8}`,
			setup: func(m *handlerMocks) {
				m.fulfillment.On("Process", mock.Anything, "nope", 8).Return(nil, service.ErrRequestNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupRouterWithMocks(t, DefaultRouterConfig())
			if tt.setup != nil {
				tt.setup(m)
			}

			w := doRequest(router, tt.method, tt.path, tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPurchaseReports(t *testing.T) {
	shipped := &model.PurchaseRecord{ID: "pur-1", Status: model.PurchaseStatusShipped}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setup          func(*handlerMocks)
		expectedStatus int
	}{
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/api/reports/purchases?userId=user-1&limit=5",
			setup: func(m *handlerMocks) {
				m.purchases.On("List", mock.Anything, mock.MatchedBy(func(f model.PurchaseFilter) bool {
					return f.UserID == "user-1" && f.Limit == 5
				})).Return([]model.PurchaseRecord{*shipped}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "negative limit",
			method:         http.MethodGet,
			path:           "/api/reports/purchases?limit=-1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/api/reports/purchases/pur-1",
			setup: func(m *handlerMocks) {
				m.purchases.On("Get", mock.Anything, "pur-1").Return(shipped, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get unknown",
			method: http.MethodGet,
			path:   "/api/reports/purchases/nope",
			setup: func(m *handlerMocks) {
				m.purchases.On("Get", mock.Anything, "nope").Return(nil, service.ErrPurchaseNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "ship",
			method: http.MethodPatch,
			path:   "/api/reports/purchases/pur-1",
			body:   `{"status": "SHIPPED"}`,
			setup: func(m *handlerMocks) {
				m.purchases.On("UpdateStatus", mock.Anything, "pur-1", model.PurchaseStatusShipped).Return(shipped, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown status",
			method:         http.MethodPatch,
			path:           "/api/reports/purchases/pur-1",
			body:           `{"status": "LOST"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupRouterWithMocks(t, DefaultRouterConfig())
			if tt.setup != nil {
				tt.setup(m)
			}

			w := doRequest(router, tt.method, tt.path, tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthenticatedRoutes(t *testing.T) {
	secret := []byte("test-secret")
	cfg := DefaultRouterConfig()
	cfg.EnableAuth = true
	cfg.JWTSecret = secret
	cfg.APIKeys = map[string]bool{"admin-key": true}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		path           string
		headers        map[string]string
		setup          func(*handlerMocks)
		expectedStatus int
	}{
		{
			name:           "cart without token",
			method:         http.MethodGet,
			path:           "/api/cart",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "token subject wins over query user",
			method:  http.MethodGet,
			path:    "/api/cart?user_id=someone-else",
			headers: map[string]string{"Authorization": "Bearer " + token},
			setup: func(m *handlerMocks) {
				m.carts.On("GetCart", mock.Anything, "user-7").Return(&model.Cart{UserID: "user-7"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "admin route without key",
			method:         http.MethodGet,
			path:           "/api/reports/purchases/pur-1",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin route with a customer token only",
			method:         http.MethodGet,
			path:           "/api/reports/purchases/pur-1",
			headers:        map[string]string{"Authorization": "Bearer " + token},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "admin route with key",
			method:  http.MethodGet,
			path:    "/api/reports/purchases/pur-1",
			headers: map[string]string{middleware.APIKeyHeader: "admin-key"},
			setup: func(m *handlerMocks) {
				m.purchases.On("Get", mock.Anything, "pur-1").Return(&model.PurchaseRecord{ID: "pur-1"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "public product lookup needs no credentials",
			method: http.MethodGet,
			path:   "/api/products/p-1",
			setup: func(m *handlerMocks) {
				m.catalog.On("GetProduct", mock.Anything, "p-1").Return(&model.Product{ID: "p-1"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupRouterWithMocks(t, cfg)
			if tt.setup != nil {
				tt.setup(m)
			}

			w := doRequest(router, tt.method, tt.path, "", tt.headers)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_AuditsCheckout(t *testing.T) {
	logging := &mocks.MockLoggingService{}
	written := make(chan *model.LogEntry, 4)
	logging.On("CreateLog", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		written <- args.Get(1).(*model.LogEntry)
	}).Return(nil)

	checkout := &mocks.MockCheckoutService{}
	checkout.On("Checkout", mock.Anything, mock.Anything).
		Return(&model.PurchaseRecord{ID: "pur-1", GrandTotal: decimal.RequireFromString("10")}, nil)

	handler := NewHandler(Services{Checkout: checkout, Logging: logging})
	router := gin.New()
	router.Use(middleware.RequestID())
	router.POST("/api/checkout", handler.Checkout)

	w := doRequest(router, http.MethodPost, "/api/checkout", checkoutBody, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	select {
	case entry := <-written:
		assert.Equal(t, middleware.ActionCheckout, entry.ActionType)
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was not written")
	}
}

func TestAuditLogReport(t *testing.T) {
	page := &model.AuditPage{
		Entries: []model.LogEntry{{ID: "l1", ActionType: middleware.ActionCheckout, UserID: "user-1"}},
		Total:   12,
		Limit:   1,
	}

	tests := []struct {
		name           string
		path           string
		setup          func(*mocks.MockLoggingService)
		expectedStatus int
	}{
		{
			name: "filters are passed through",
			path: "/api/reports/audit-logs?action=checkout&userId=user-1&level=INFO&limit=1&skip=3",
			setup: func(m *mocks.MockLoggingService) {
				m.On("AuditTrail", mock.Anything, mock.MatchedBy(func(q model.LogQueryOptions) bool {
					return q.ActionType == "checkout" && q.UserID == "user-1" && q.Level == "info" && q.Limit == 1 && q.Skip == 3
				})).Return(page, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown level",
			path:           "/api/reports/audit-logs?level=loud",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid paging",
			path: "/api/reports/audit-logs?limit=-3",
			setup: func(m *mocks.MockLoggingService) {
				m.On("AuditTrail", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidLogQuery)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "log store down",
			path: "/api/reports/audit-logs",
			setup: func(m *mocks.MockLoggingService) {
				m.On("AuditTrail", mock.Anything, mock.Anything).Return(nil, circuitbreaker.ErrCircuitOpen)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logging := &mocks.MockLoggingService{}
			if tt.setup != nil {
				tt.setup(logging)
			}
			router := NewRouter(NewHandler(Services{Logging: logging}), NewHealthHandler(), DefaultRouterConfig())

			w := doRequest(router, http.MethodGet, tt.path, "", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got model.AuditPage
				decodeData(t, w, &got)
				assert.Equal(t, int64(12), got.Total)
				require.Len(t, got.Entries, 1)
				assert.Equal(t, "user-1", got.Entries[0].UserID)
			}
			logging.AssertExpectations(t)
		})
	}

	t.Run("not served without log persistence", func(t *testing.T) {
		router, _ := setupRouterWithMocks(t, DefaultRouterConfig())

		w := doRequest(router, http.MethodGet, "/api/reports/audit-logs", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
