package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.RequestIDKey, "req-1")
	return c, w
}

func Test_bindJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
	}{
		{"valid", `{"status": "SHIPPED"}`, true, http.StatusOK},
		{"malformed", `{"status":`, false, http.StatusBadRequest},
		{"fails Validate", `{"status": "LOST"}`, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodPatch, tt.body)

			req, ok := bindJSON[dto.UpdatePurchaseStatusRequest](c)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, req)
				assert.Equal(t, "SHIPPED", string(req.Status))
				assert.False(t, c.IsAborted())
				return
			}
			assert.Nil(t, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBindQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantOK bool
		want   dto.AuditLogQuery
	}{
		{"filters", "?level=warn&limit=20&skip=40", true, dto.AuditLogQuery{Level: "warn", Limit: 20, Skip: 40}},
		{"empty", "", true, dto.AuditLogQuery{}},
		{"non-numeric limit", "?limit=ten", false, dto.AuditLogQuery{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/reports/audit-logs"+tt.query, nil)

			q, ok := bindQuery[dto.AuditLogQuery](c)

			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				return
			}
			assert.Equal(t, tt.want, *q)
		})
	}
}
