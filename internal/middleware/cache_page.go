package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

const HeaderCache = "X-Cache"

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage caches successful JSON GET responses keyed by the request URI.
func CachePage(c cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil || ttl <= 0 || ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		key := "page:" + ctx.Request.URL.RequestURI()
		raw, err := c.Get(ctx.Request.Context(), key)
		if err == nil {
			ctx.Header(HeaderCache, "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
			ctx.Abort()
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.FromGin(ctx).Warn().Err(err).Str("key", key).Msg("Page cache read failed")
		}

		ctx.Header(HeaderCache, "MISS")
		w := &bodyCaptureWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = w
		ctx.Next()

		if w.Status() != http.StatusOK || w.body.Len() == 0 {
			return
		}
		if err := c.Set(ctx.Request.Context(), key, w.body.Bytes(), ttl); err != nil {
			logger.FromGin(ctx).Warn().Err(err).Str("key", key).Msg("Page cache write failed")
		}
	}
}
