package response

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"todoapi/pkg/tracing"
)

type CacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// ResponseCache is a short-TTL cache for GET responses. Entries are keyed
// on the Authorization header as well as the URL, so one owner's task list
// can never be served to another. Any write request drops all of the
// caller's entries, keeping reads consistent with their own mutations.
type ResponseCache struct {
	cache   *cache.Cache
	config  map[string]CacheConfig
	logger  *zap.Logger
	metrics *tracing.AppMetrics
}

type cachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func NewResponseCache(logger *zap.Logger, metrics *tracing.AppMetrics) *ResponseCache {
	c := cache.New(5*time.Minute, 10*time.Minute)

	configs := map[string]CacheConfig{
		"default": {
			TTL:     time.Second,
			Enabled: true,
		},
	}

	return &ResponseCache{
		cache:   c,
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

func (rc *ResponseCache) SetConfig(path string, config CacheConfig) {
	rc.config[path] = config
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			rc.invalidateCaller(c)
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		config, exists := rc.config[path]
		if !exists {
			config = rc.config["default"]
		}

		if !config.Enabled {
			c.Next()
			return
		}

		key := rc.cacheKey(c)

		if raw, found := rc.cache.Get(key); found {
			cached := raw.(cachedResponse)

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), path)
			}

			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(c.Request.Context(), path)
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}

		rc.cache.Set(key, cachedResponse{
			StatusCode:  c.Writer.Status(),
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}, config.TTL)
	}
}

// callerPrefix groups all of one caller's entries so a write can purge them.
func (rc *ResponseCache) callerPrefix(c *gin.Context) string {
	sum := md5.Sum([]byte(c.GetHeader("Authorization")))
	return fmt.Sprintf("response_cache:%x:", sum)
}

func (rc *ResponseCache) cacheKey(c *gin.Context) string {
	sum := md5.Sum([]byte(c.Request.Method + "|" + c.Request.URL.RequestURI()))
	return rc.callerPrefix(c) + fmt.Sprintf("%x", sum)
}

func (rc *ResponseCache) invalidateCaller(c *gin.Context) {
	prefix := rc.callerPrefix(c)

	for key := range rc.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			rc.cache.Delete(key)
		}
	}
}
