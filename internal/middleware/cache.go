package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig controls Cache-Control headers on read endpoints.
type CacheConfig struct {
	MaxAge         int
	Private        bool
	MustRevalidate bool
}

// DefaultCacheConfig suits the dispenser's read endpoints: stock levels go
// stale fast, so responses are cacheable only briefly.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:         5,
		Private:        true,
		MustRevalidate: true,
	}
}

// Cache adds cache control headers to GET responses; everything else is
// marked no-store.
func Cache(config CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		directives := make([]string, 0, 3)
		if config.Private {
			directives = append(directives, "private")
		} else {
			directives = append(directives, "public")
		}
		if config.MaxAge > 0 {
			directives = append(directives, fmt.Sprintf("max-age=%d", config.MaxAge))
		}
		if config.MustRevalidate {
			directives = append(directives, "must-revalidate")
		}

		c.Header("Cache-Control", strings.Join(directives, ", "))
		c.Next()
	}
}
