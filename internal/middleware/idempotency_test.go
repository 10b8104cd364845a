package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idempotencyHarness struct {
	router *gin.Engine
	calls  atomic.Int32
	status atomic.Int32
	block  chan struct{}
}

func newIdempotencyHarness(t *testing.T, store IdempotencyStore) *idempotencyHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &idempotencyHarness{router: gin.New()}
	h.status.Store(http.StatusCreated)
	h.router.Use(RequestID(), func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set(UserIDKey, u)
		}
		c.Next()
	})
	h.router.Use(Idempotency(IdempotencyConfig{Store: store, TTL: time.Hour, LockTTL: time.Minute}))
	handler := func(c *gin.Context) {
		n := h.calls.Add(1)
		if h.block != nil {
			<-h.block
		}
		c.JSON(int(h.status.Load()), gin.H{"call": n})
	}
	h.router.POST("/api/checkout", handler)
	h.router.GET("/api/checkout", handler)
	return h
}

func (h *idempotencyHarness) do(method, key, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("replays the stored response", func(t *testing.T) {
		h := newIdempotencyHarness(t, NewMemoryIdempotencyStore())

		first := h.do(http.MethodPost, "k1", "u1", `{"tax":"1"}`)
		second := h.do(http.MethodPost, "k1", "u1", `{"tax":"1"}`)

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
		assert.Empty(t, first.Header().Get(IdempotencyReplayedHeader))
		assert.Equal(t, int32(1), h.calls.Load())
	})

	t.Run("rejects a reused key with a different body", func(t *testing.T) {
		h := newIdempotencyHarness(t, NewMemoryIdempotencyStore())

		h.do(http.MethodPost, "k1", "u1", `{"tax":"1"}`)
		w := h.do(http.MethodPost, "k1", "u1", `{"tax":"2"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "different request")
		assert.Equal(t, int32(1), h.calls.Load())
	})

	t.Run("keys are scoped per user", func(t *testing.T) {
		h := newIdempotencyHarness(t, NewMemoryIdempotencyStore())

		h.do(http.MethodPost, "k1", "u1", `{}`)
		w := h.do(http.MethodPost, "k1", "u2", `{}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
		assert.Equal(t, int32(2), h.calls.Load())
	})

	t.Run("failed responses are not stored", func(t *testing.T) {
		h := newIdempotencyHarness(t, NewMemoryIdempotencyStore())
		h.status.Store(http.StatusConflict)

		assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "k1", "u1", `{}`).Code)

		h.status.Store(http.StatusCreated)
		w := h.do(http.MethodPost, "k1", "u1", `{}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, int32(2), h.calls.Load())
	})

	t.Run("rejects a retry while the first request runs", func(t *testing.T) {
		h := newIdempotencyHarness(t, NewMemoryIdempotencyStore())
		h.block = make(chan struct{})

		done := make(chan *httptest.ResponseRecorder)
		go func() { done <- h.do(http.MethodPost, "k1", "u1", `{}`) }()
		require.Eventually(t, func() bool { return h.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

		w := h.do(http.MethodPost, "k1", "u1", `{}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "still in progress")

		close(h.block)
		assert.Equal(t, http.StatusCreated, (<-done).Code)
	})

	t.Run("requests without a key pass through", func(t *testing.T) {
		h := newIdempotencyHarness(t, NewMemoryIdempotencyStore())

		h.do(http.MethodPost, "", "u1", `{}`)
		h.do(http.MethodPost, "", "u1", `{}`)

		assert.Equal(t, int32(2), h.calls.Load())
	})

	t.Run("safe methods are ignored", func(t *testing.T) {
		h := newIdempotencyHarness(t, NewMemoryIdempotencyStore())

		h.do(http.MethodGet, "k1", "u1", "")
		h.do(http.MethodGet, "k1", "u1", "")

		assert.Equal(t, int32(2), h.calls.Load())
	})

	t.Run("store outage serves the request", func(t *testing.T) {
		h := newIdempotencyHarness(t, failingIdempotencyStore{})

		w := h.do(http.MethodPost, "k1", "u1", `{}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("nil store disables the middleware", func(t *testing.T) {
		h := newIdempotencyHarness(t, nil)

		h.do(http.MethodPost, "k1", "u1", `{}`)
		h.do(http.MethodPost, "k1", "u1", `{}`)

		assert.Equal(t, int32(2), h.calls.Load())
	})
}

type failingIdempotencyStore struct{}

func (failingIdempotencyStore) Reserve(context.Context, string, string, time.Duration) (*IdempotencyRecord, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func (failingIdempotencyStore) Complete(context.Context, string, IdempotencyRecord, time.Duration) error {
	return errors.New("redis: connection refused")
}

func (failingIdempotencyStore) Release(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func Test_idempotencyStoreKey(t *testing.T) {
	post := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	put := httptest.NewRequest(http.MethodPut, "/api/checkout", nil)

	base := idempotencyStoreKey("k", post, "u1")

	assert.Len(t, base, 64)
	assert.Equal(t, base, idempotencyStoreKey("k", post, "u1"))
	assert.NotEqual(t, base, idempotencyStoreKey("k", put, "u1"))
	assert.NotEqual(t, base, idempotencyStoreKey("k", post, "u2"))
	assert.NotEqual(t, base, idempotencyStoreKey("k2", post, "u1"))
}
