package mw

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheHeader reports HIT or MISS on cacheable responses.
const CacheHeader = "X-Cache"

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache wraps a go-cache store with a flush generation. A response
// whose request started before the latest Flush is never stored.
type ResponseCache struct {
	store *cache.Cache
	mu    sync.Mutex
	gen   uint64
}

func NewResponseCache(store *cache.Cache) *ResponseCache {
	return &ResponseCache{store: store}
}

// Flush drops every entry and invalidates responses still being written.
func (rc *ResponseCache) Flush() {
	rc.mu.Lock()
	rc.gen++
	rc.store.Flush()
	rc.mu.Unlock()
}

func (rc *ResponseCache) generation() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.gen
}

// setIfCurrent stores value unless a Flush happened since gen was read.
func (rc *ResponseCache) setIfCurrent(gen uint64, key string, value cachedResponse, d time.Duration) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.gen != gen {
		return false
	}
	rc.store.Set(key, value, d)
	return true
}

// Cache serves repeated GETs of the same URI from rc for up to duration.
// A request carrying "Cache-Control: no-cache" skips the lookup but still
// refreshes the entry.
func Cache(rc *ResponseCache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if c.GetHeader("Cache-Control") != "no-cache" {
			if resp, found := rc.store.Get(key); found {
				cached := resp.(cachedResponse)
				for k, v := range cached.headers {
					c.Writer.Header()[k] = v
				}
				c.Writer.Header().Set(CacheHeader, "HIT")
				c.Writer.WriteHeader(cached.status)
				c.Writer.Write(cached.body)
				c.Abort()
				return
			}
		}

		gen := rc.generation()
		c.Writer.Header().Set(CacheHeader, "MISS")
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			headers := blw.Header().Clone()
			headers.Del(CacheHeader)
			rc.setIfCurrent(gen, key, cachedResponse{
				status:  blw.Status(),
				headers: headers,
				body:    blw.body.Bytes(),
			}, duration)
		}
	}
}
