package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/storefront-go/storefront/internal/config"
)

// cachedResponse is the envelope stored in Redis for a browse response.
// Only the content type is preserved; browse endpoints set no other
// meaningful headers.
type cachedResponse struct {
	ContentType string `json:"ct"`
	Body        []byte `json:"body"`
}

// teeWriter copies the response body while it streams to the client, up
// to limit bytes.  Oversized responses mark themselves uncacheable
// instead of being truncated into the cache.
type teeWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.buf.Len()+len(b) > w.limit {
			w.overflow = true
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// browseKey hashes route plus query string under the configured prefix.
// The route pattern (not the raw path) keeps keys stable across encoded
// path variants.
func browseKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

// BrowseCache caches successful GET responses of the public catalog
// browse endpoints in Redis.  Responses are visitor-independent, so the
// cache key covers route and query only.  With caching disabled or Redis
// absent it degrades to a pass-through.
func BrowseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := browseKey(cfg.Prefix, c)
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					c.Response().Header().Set(echo.HeaderContentType, cached.ContentType)
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, cached.ContentType, cached.Body)
				}
			}

			tee := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = tee
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if tee.status == http.StatusOK && !tee.overflow {
				raw, err := json.Marshal(cachedResponse{
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        tee.buf.Bytes(),
				})
				if err == nil {
					// The request context may already be done; the write
					// should still land.
					if err := rdb.SetEx(context.Background(), key, raw, cfg.TTL).Err(); err != nil {
						log.Printf("browse cache: store %s failed: %v", key, err)
					}
				}
			}
			return nil
		}
	}
}
