package middleware

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressedRouter() *gin.Engine {
	router := gin.New()
	router.Use(Compression())
	reply := func(c *gin.Context) { c.String(http.StatusOK, "12 units left") }
	router.GET("/api/products/:id/stock", reply)
	router.GET("/metrics", reply)
	router.GET("/readyz", reply)
	router.POST("/api/cart/lines", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Data(http.StatusOK, "application/json", body)
	})
	return router
}

func TestCompression_Responses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		path           string
		acceptEncoding string
		wantGzip       bool
	}{
		{"gzip accepted", "/api/products/p-1/stock", "gzip", true},
		{"gzip among others", "/api/products/p-1/stock", "br, gzip;q=0.8", true},
		{"no Accept-Encoding", "/api/products/p-1/stock", "", false},
		{"scrape endpoint", "/metrics", "gzip", false},
		{"readiness probe", "/readyz", "gzip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			compressedRouter().ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			if !tt.wantGzip {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				assert.Equal(t, "12 units left", w.Body.String())
				return
			}
			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			zr, err := stdgzip.NewReader(w.Body)
			require.NoError(t, err)
			plain, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Equal(t, "12 units left", string(plain))
		})
	}
}

func TestCompression_InflatesGzipRequestBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	payload := `{"product_id":"p-1","quantity":3}`
	var buf bytes.Buffer
	zw := stdgzip.NewWriter(&buf)
	_, err := zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/lines", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()

	compressedRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, payload, w.Body.String())
}
