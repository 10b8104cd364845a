package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/i18n"
)

const (
	APIKeyHeader = "X-API-Key"
	APIKeyQuery  = "api_key"
	// APIKeyIDKey holds a short fingerprint of the accepted key, never the key.
	APIKeyIDKey = "api_key_id"
)

type keyDigest [sha256.Size]byte

// APIKeyAuth guards the admin routes. The key comes from the X-API-Key header
// or, failing that, the api_key query parameter. An empty key set disables
// the check.
func APIKeyAuth(validKeys map[string]bool) gin.HandlerFunc {
	digests := make([]keyDigest, 0, len(validKeys))
	for key, enabled := range validKeys {
		if enabled && key != "" {
			digests = append(digests, sha256.Sum256([]byte(key)))
		}
	}

	return func(c *gin.Context) {
		if len(digests) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.Query(APIKeyQuery)
		}
		if key == "" {
			rejectAPIKey(c, i18n.ErrKeyAPIKeyRequired)
			return
		}

		presented := sha256.Sum256([]byte(key))
		if !knownKey(digests, presented) {
			rejectAPIKey(c, i18n.ErrKeyInvalidAPIKey)
			return
		}
		c.Set(APIKeyIDKey, hex.EncodeToString(presented[:4]))
		c.Next()
	}
}

// knownKey compares against every digest so timing does not reveal which one matched.
func knownKey(digests []keyDigest, presented keyDigest) bool {
	found := 0
	for i := range digests {
		found |= subtle.ConstantTimeCompare(digests[i][:], presented[:])
	}
	return found == 1
}

func rejectAPIKey(c *gin.Context, messageKey string) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(c))
	c.Header("WWW-Authenticate", `APIKey header="`+APIKeyHeader+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewError(dto.ErrCodeUnauthorized, message).WithRequestID(GetRequestID(c)))
}
