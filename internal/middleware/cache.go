package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bible-studies-api/pkg/middleware/requestid"
)

const (
	responseMetaKey = "response_meta"
	startedAtKey    = "response_started_at"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta stores a per-request metadata map that handlers copy into the envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(startedAtKey, time.Now())
		c.Set(responseMetaKey, meta)
		c.Next()
	}
}

// SetCacheHit records whether the response body came from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
}

// ExtractMeta returns the metadata map stored on the context, stamped with the elapsed time.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	typed, ok := meta.(map[string]interface{})
	if !ok {
		return nil
	}
	if started, ok := c.Get(startedAtKey); ok {
		if at, ok := started.(time.Time); ok {
			typed["processing_time_ms"] = time.Since(at).Milliseconds()
		}
	}
	return typed
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
