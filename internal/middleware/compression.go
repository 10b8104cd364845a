package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// uncompressedPaths are scraped or probed by machines, or serve their own assets.
var uncompressedPaths = []string{"/metrics", "/swagger", "/healthz", "/readyz"}

// Compression gzips responses at BestSpeed for clients that accept it and
// inflates request bodies sent with Content-Encoding: gzip before binding.
func Compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed,
		gzip.WithExcludedPaths(uncompressedPaths),
		gzip.WithDecompressFn(gzip.DefaultDecompressHandle))
}
