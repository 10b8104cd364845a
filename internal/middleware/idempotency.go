package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/i18n"
	"github.com/guttosm/casebreak-service/internal/logger"
)

const (
	// IdempotencyKeyHeader is the request header carrying the client's key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from a stored record.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
)

// IdempotencyRecord is what a store keeps per key. A record without
// Completed set belongs to a request that is still running.
type IdempotencyRecord struct {
	Fingerprint string `json:"fingerprint"`
	Completed   bool   `json:"completed"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore persists idempotency records.
type IdempotencyStore interface {
	// Reserve claims key for a new request. If a record already exists it is
	// returned with reserved == false.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (existing *IdempotencyRecord, reserved bool, err error)
	// Complete stores the final response under key.
	Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error
	// Release drops a reservation so the client may retry.
	Release(ctx context.Context, key string) error
}

// IdempotencyConfig holds configuration for idempotency middleware.
type IdempotencyConfig struct {
	Store IdempotencyStore
	// TTL is how long a completed response is replayed.
	TTL time.Duration
	// LockTTL bounds a reservation whose request never completes.
	LockTTL time.Duration
}

// DefaultIdempotencyConfig keeps records in process memory for 24 hours.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Store:   NewMemoryIdempotencyStore(),
		TTL:     24 * time.Hour,
		LockTTL: time.Minute,
	}
}

// Idempotency makes POST, PUT and PATCH requests carrying an Idempotency-Key
// safe to retry. The first request runs and its 2xx response is stored; a retry
// with the same key and body gets the stored response back, a retry with a
// different body is rejected with 422, and a retry while the first request is
// still running gets 409. Non-2xx responses are not stored.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}

	return func(c *gin.Context) {
		if !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		body, err := readBody(c.Request)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		storeKey := idempotencyStoreKey(key, c.Request, UserID(c))
		fingerprint := fingerprintOf(body)

		existing, reserved, err := cfg.Store.Reserve(ctx, storeKey, fingerprint, cfg.LockTTL)
		if err != nil {
			// Store unavailable: serve the request without replay protection.
			log.Warn().Err(err).Msg("Idempotency store unavailable")
			c.Next()
			return
		}
		if !reserved {
			replayOrReject(c, existing, fingerprint)
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := cfg.Store.Release(context.WithoutCancel(ctx), storeKey); err != nil {
				log.Warn().Err(err).Msg("Failed to release idempotency key")
			}
			return
		}

		record := IdempotencyRecord{
			Fingerprint: fingerprint,
			Completed:   true,
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := cfg.Store.Complete(context.WithoutCancel(ctx), storeKey, record, cfg.TTL); err != nil {
			log.Warn().Err(err).Msg("Failed to store idempotent response")
		}
	}
}

func replayOrReject(c *gin.Context, existing *IdempotencyRecord, fingerprint string) {
	locale := i18n.GetLocale(c)
	translator := i18n.GetTranslator()

	switch {
	case existing == nil || existing.Fingerprint != fingerprint:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity,
			dto.NewError(dto.ErrCodeInvalidRequest, translator.Translate(i18n.ErrKeyIdempotencyKeyReused, locale)).
				WithRequestID(GetRequestID(c)))
	case !existing.Completed:
		c.AbortWithStatusJSON(http.StatusConflict,
			dto.NewError(dto.ErrCodeConflict, translator.Translate(i18n.ErrKeyRequestInProgress, locale)).
				WithRequestID(GetRequestID(c)))
	default:
		contentType := existing.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Header(IdempotencyReplayedHeader, "true")
		c.Data(existing.StatusCode, contentType, existing.Body)
		c.Abort()
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// readBody reads the request body and puts it back for the handler.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// idempotencyStoreKey scopes a client key to the route and the caller so two
// customers can't collide on the same key.
func idempotencyStoreKey(key string, req *http.Request, userID string) string {
	h := sha256.New()
	for _, part := range []string{key, req.Method, req.URL.Path, userID} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fingerprintOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// capturingWriter copies the response body while it is written.
type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
