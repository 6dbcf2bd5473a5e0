package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"todoapi/pkg/config"
	"todoapi/pkg/response"
	"todoapi/pkg/tracing"
)

func MetricsMiddleware(metrics *tracing.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
			duration,
		)

		if status < 400 {
			if op, ok := taskOperation(c.Request.Method, c.FullPath()); ok {
				metrics.RecordTaskOperation(c.Request.Context(), op)
			}
		}
	}
}

func taskOperation(method, path string) (string, bool) {
	switch {
	case method == http.MethodPost && path == "/todos":
		return "create", true
	case method == http.MethodPut && path == "/todos/:id":
		return "update", true
	case method == http.MethodDelete && path == "/todos/:id":
		return "delete", true
	case method == http.MethodGet && strings.HasPrefix(path, "/todos"):
		return "read", true
	}

	return "", false
}

func LoggingMiddleware(logger *config.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		logger.InfoWithTrace(c.Request.Context(), "HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("trace_id", tracing.GetTraceID(c.Request.Context())),
		)
	}
}

func SetupGinMiddlewareWithConfig(router *gin.Engine, serviceName string, metrics *tracing.AppMetrics, logger *config.LokiLogger, appConfig *config.AppConfig) {
	httpsEnforcer := config.NewHTTPSEnforcer(logger.Logger.Logger)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(serviceName))

	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))

	if appConfig.CacheEnabled {
		responseCache := response.NewResponseCache(logger.Logger.Logger, metrics)
		for path, ttl := range appConfig.CacheTTLs {
			responseCache.SetConfig(path, response.CacheConfig{TTL: ttl, Enabled: true})
		}
		router.Use(responseCache.CacheMiddleware())
	}

	if appConfig.RateLimitEnabled {
		rateLimiter := config.NewRateLimiter(logger.Logger.Logger, metrics, appConfig)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	router.Use(MetricsMiddleware(metrics))
}
