package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/i18n"
)

// Validator is implemented by request DTOs that can check themselves.
type Validator interface {
	Validate() error
}

// bindJSON decodes and validates the body of c into a T. On failure the error
// response has already been written and ok is false.
func bindJSON[T any](c *gin.Context) (req *T, ok bool) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		NewResponseBuilder(c).Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return nil, false
	}
	return validated(c, &v)
}

// bindQuery is bindJSON for query parameters. Malformed values are reported
// as validation failures.
func bindQuery[T any](c *gin.Context) (q *T, ok bool) {
	var v T
	if err := c.ShouldBindQuery(&v); err != nil {
		NewResponseBuilder(c).ValidationError(err)
		return nil, false
	}
	return validated(c, &v)
}

func validated[T any](c *gin.Context, v *T) (*T, bool) {
	if validator, isValidator := any(v).(Validator); isValidator {
		if err := validator.Validate(); err != nil {
			NewResponseBuilder(c).ValidationError(err)
			return nil, false
		}
	}
	return v, true
}
