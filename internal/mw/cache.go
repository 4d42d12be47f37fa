package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// captureWriter tees the response body so it can be cached after the handler
// has written it.
type captureWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheResponses serves repeated GET requests from an in-memory cache keyed
// by request URI. Only successful responses are stored.
func CacheResponses(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if hit, found := store.Get(key); found {
			resp := hit.(cachedResponse)
			c.Data(resp.status, resp.contentType, resp.body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer, buf: bytes.NewBuffer(nil)}
		c.Writer = cw

		c.Next()

		if cw.Status() >= 200 && cw.Status() < 300 {
			store.Set(key, cachedResponse{
				status:      cw.Status(),
				contentType: cw.Header().Get("Content-Type"),
				body:        cw.buf.Bytes(),
			}, ttl)
		}
	}
}
