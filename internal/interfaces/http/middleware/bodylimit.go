package middleware

import (
	"net/http"
	"strings"

	"github.com/aprovacrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimitConfig sets the request body ceiling. Uploads get a larger limit
// through PathLimits, keyed by path prefix.
type BodyLimitConfig struct {
	MaxBytes   int64
	PathLimits map[string]int64
}

func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithConfig(BodyLimitConfig{MaxBytes: maxBytes})
}

// BodyLimitWithConfig limits the body size, using the longest matching path prefix
func BodyLimitWithConfig(cfg BodyLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := cfg.limitFor(c.Request.URL.Path)
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, tooLargeResponse(c))
			return
		}
		// Chunked bodies have no length up front; reads past the limit fail
		// with *http.MaxBytesError.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func (cfg BodyLimitConfig) limitFor(path string) int64 {
	limit := cfg.MaxBytes
	matched := 0
	for prefix, max := range cfg.PathLimits {
		if len(prefix) > matched && strings.HasPrefix(path, prefix) {
			limit = max
			matched = len(prefix)
		}
	}
	return limit
}

func tooLargeResponse(c *gin.Context) dto.Response {
	return dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge,
		"O corpo da requisição excede o tamanho máximo permitido", getRequestID(c))
}
