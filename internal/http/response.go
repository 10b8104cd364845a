package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/circuitbreaker"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/i18n"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/guttosm/casebreak-service/internal/service"
)

type errorMapping struct {
	target error
	status int
	key    string
}

// serviceErrors is checked in order; the first errors.Is match wins.
var serviceErrors = []errorMapping{
	{service.ErrProductNotFound, http.StatusNotFound, i18n.ErrKeyProductNotFound},
	{service.ErrRequestNotFound, http.StatusNotFound, i18n.ErrKeyRequestNotFound},
	{service.ErrPurchaseNotFound, http.StatusNotFound, i18n.ErrKeyPurchaseNotFound},
	{service.ErrRequestAlreadyCompleted, http.StatusConflict, i18n.ErrKeyRequestCompleted},
	{service.ErrDuplicateSKU, http.StatusConflict, i18n.ErrKeyDuplicateSKU},
	{service.ErrProductHasNoUnitInventory, http.StatusBadRequest, i18n.ErrKeyProductNoUnitInventory},
	{service.ErrInvalidPricingInput, http.StatusBadRequest, i18n.ErrKeyInvalidPricingInput},
	{service.ErrInvalidQuantity, http.StatusBadRequest, i18n.ErrKeyInvalidQuantity},
	{service.ErrInvalidProduct, http.StatusBadRequest, i18n.ErrKeyInvalidProduct},
	{service.ErrCartEmpty, http.StatusBadRequest, i18n.ErrKeyCartEmpty},
	{service.ErrMissingUser, http.StatusBadRequest, i18n.ErrKeyMissingUser},
	{service.ErrMissingShippingAddress, http.StatusBadRequest, i18n.ErrKeyMissingShippingAddress},
	{service.ErrInvalidAdjustment, http.StatusBadRequest, i18n.ErrKeyInvalidAdjustment},
	{service.ErrInvalidStatus, http.StatusBadRequest, i18n.ErrKeyInvalidStatus},
	{service.ErrInvalidLogQuery, http.StatusBadRequest, i18n.ErrKeyInvalidRequest},
	{circuitbreaker.ErrCircuitOpen, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, i18n.ErrKeyTimeout},
}

// statusForError maps a service error to a status and message key. Anything
// unrecognised is a 500, including raw repository errors that escaped a service.
func statusForError(err error) (int, string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m.status, m.key
		}
	}
	return http.StatusInternalServerError, i18n.ErrKeyInternalError
}

// ResponseBuilder writes the success and error envelopes for one request.
type ResponseBuilder struct {
	c *gin.Context
}

func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success wraps data in a SuccessResponse.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	b.c.JSON(statusCode, dto.SuccessResponse{
		Data:      data,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now().UTC(),
	})
}

func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

func (b *ResponseBuilder) SuccessCreated(data interface{}) {
	b.Success(http.StatusCreated, data)
}

// Error aborts with a localized error envelope. A non-nil err is attached to
// the context for the error handler to log.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.ErrorWithDetails(statusCode, messageKey, err, nil)
}

// ErrorWithDetails is Error with field-level details attached.
func (b *ResponseBuilder) ErrorWithDetails(statusCode int, messageKey string, err error, details map[string]string) {
	if err != nil {
		_ = b.c.Error(err)
	}
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	b.c.AbortWithStatusJSON(statusCode, dto.NewError(dto.ErrCodeFromStatus(statusCode), message).
		WithDetails(details).
		WithRequestID(middleware.GetRequestID(b.c)))
}

// ServiceError answers with whatever the service layer returned. Checkout
// failures name the failing cart line in details.
func (b *ResponseBuilder) ServiceError(err error) {
	status, key := statusForError(err)

	var details map[string]string
	if ce, ok := service.AsCheckoutError(err); ok {
		details = map[string]string{
			"line":       strconv.Itoa(ce.Line),
			"product_id": ce.ProductID,
		}
	}
	b.ErrorWithDetails(status, key, err, details)
}

// ValidationError answers a request that failed dto validation.
func (b *ResponseBuilder) ValidationError(err error) {
	var ve *dto.ValidationError
	if errors.As(err, &ve) {
		b.ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err,
			map[string]string{"field": ve.Field, "reason": ve.Message})
		return
	}
	b.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
}
