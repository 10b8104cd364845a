package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/logger"
	"github.com/guttosm/casebreak-service/internal/service"
	"github.com/rs/zerolog"
)

// quietPaths are polled by orchestrators and scrapers. They are logged at
// debug and never persisted.
var quietPaths = map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

// RequestLogger writes one structured line per request and, when
// loggingService is set, persists the same entry.
func RequestLogger(loggingService service.LoggingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := levelForStatus(status)
		quiet := quietPaths[c.Request.URL.Path]
		if quiet {
			level = zerolog.DebugLevel
		}

		entry := newLogEntry(c, level.String(), "HTTP request")
		entry.StatusCode = status
		entry.Duration = time.Since(start).Milliseconds()
		if route := c.FullPath(); route != "" {
			entry.WithField("route", route)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			entry.Error = errs.Last().Error()
		}

		event := logger.FromContext(c.Request.Context()).WithLevel(level).
			Str("method", entry.Method).
			Str("path", entry.Path).
			Int("status_code", status).
			Int64("duration_ms", entry.Duration).
			Str("ip", entry.IP)
		if entry.UserID != "" {
			event = event.Str("user_id", entry.UserID)
		}
		if entry.Error != "" {
			event = event.Str("error", entry.Error)
		}
		event.Msg("HTTP request")

		if !quiet {
			persistLog(loggingService, entry)
		}
	}
}

func newLogEntry(c *gin.Context, level, message string) *model.LogEntry {
	entry := &model.LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		RequestID: GetRequestID(c),
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		UserID:    UserID(c),
	}
	if keyID := c.GetString(APIKeyIDKey); keyID != "" {
		entry.WithField(APIKeyIDKey, keyID)
	}
	return entry
}

// persistLog hands entry to the async logger, or writes it on its own
// goroutine when no worker pool is running.
func persistLog(loggingService service.LoggingService, entry *model.LogEntry) {
	if loggingService == nil {
		return
	}
	if asyncLogger := GetAsyncLogger(); asyncLogger != nil {
		asyncLogger.Log(entry)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := loggingService.CreateLog(ctx, entry); err != nil {
			logger.FromContext(ctx).Debug().Err(err).Str("request_id", entry.RequestID).Msg("Log entry not stored")
		}
	}()
}

func levelForStatus(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
