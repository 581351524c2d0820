package mw

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const cacheHeader = "X-Cache"

// replayedHeaders describe the cached body itself. Everything else, such as the
// request ID, belongs to the request that produced the entry and is never replayed.
var replayedHeaders = []string{"Content-Type", "Content-Language", "Content-Encoding"}

type cachedResponse struct {
	status   int
	headers  http.Header
	body     []byte
	storedAt time.Time
}

// capturingWriter tees the handler's output into a buffer.
type capturingWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w capturingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w capturingWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated GET requests for the same URI from store for duration.
// Only 2xx responses are kept. Responses carry X-Cache: HIT or MISS and, on a hit,
// an Age header in seconds.
func Cache(store *cache.Cache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if v, found := store.Get(key); found {
			replay(c, v.(cachedResponse))
			return
		}

		c.Header(cacheHeader, "MISS")
		w := capturingWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		if status := w.Status(); status >= 200 && status < 300 {
			store.Set(key, cachedResponse{
				status:   status,
				headers:  pick(w.Header(), replayedHeaders),
				body:     w.buf.Bytes(),
				storedAt: time.Now(),
			}, duration)
		}
	}
}

func replay(c *gin.Context, cached cachedResponse) {
	h := c.Writer.Header()
	for k, v := range cached.headers {
		h[k] = append([]string(nil), v...)
	}
	h.Set(cacheHeader, "HIT")
	h.Set("Age", strconv.Itoa(int(time.Since(cached.storedAt).Seconds())))
	c.Writer.WriteHeader(cached.status)
	_, _ = c.Writer.Write(cached.body)
	c.Abort()
}

func pick(h http.Header, keys []string) http.Header {
	out := make(http.Header, len(keys))
	for _, k := range keys {
		if v := h.Values(k); len(v) > 0 {
			out[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	return out
}
