package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/i18n"
	"github.com/guttosm/casebreak-service/internal/logger"
)

type errorReply struct {
	status int
	key    string
}

// replyFor picks the response for an error no handler answered.
func replyFor(err *gin.Error) errorReply {
	switch {
	case err.IsType(gin.ErrorTypeBind):
		return errorReply{http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody}
	case errors.Is(err.Err, circuitbreaker.ErrCircuitOpen):
		return errorReply{http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable}
	case errors.Is(err.Err, context.DeadlineExceeded):
		return errorReply{http.StatusGatewayTimeout, i18n.ErrKeyTimeout}
	default:
		return errorReply{http.StatusInternalServerError, i18n.ErrKeyInternalError}
	}
}

// ErrorHandler answers for errors attached with c.Error when the handler wrote
// nothing. A request whose client has gone away gets no body at all.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		ctx := c.Request.Context()
		if errors.Is(last.Err, context.Canceled) && ctx.Err() != nil {
			logger.FromContext(ctx).Debug().Err(last.Err).Msg("Client went away")
			c.Abort()
			return
		}

		reply := replyFor(last)
		event := logger.FromContext(ctx).Warn()
		if reply.status >= http.StatusInternalServerError {
			event = logger.FromContext(ctx).Error()
		}
		event.Err(last.Err).
			Int("errors", len(c.Errors)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}
		message := i18n.GetTranslator().Translate(reply.key, i18n.GetLocale(c))
		c.JSON(reply.status, dto.NewError(dto.ErrCodeFromStatus(reply.status), message).WithRequestID(GetRequestID(c)))
	}
}
