package config

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"todoapi/pkg/tracing"
)

func newTestRateLimiter() *RateLimiter {
	logger := zap.NewNop()
	metrics := tracing.NewAppMetrics(prometheus.NewRegistry())

	return NewRateLimiter(logger, metrics, GetDefaultConfig())
}

func TestNewRateLimiter(t *testing.T) {
	RegisterTestingT(t)

	rl := newTestRateLimiter()

	Expect(rl).ToNot(BeNil())
	Expect(rl.store).ToNot(BeNil())
	Expect(rl.config).To(HaveKey("default"))
	Expect(rl.config).To(HaveKey("/todos"))
}

func TestRateLimitMiddleware_AllowedRequests(t *testing.T) {
	RegisterTestingT(t)

	rl := newTestRateLimiter()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
		Expect(w.Header().Get("X-RateLimit-Limit")).ToNot(BeEmpty())
		Expect(w.Header().Get("X-RateLimit-Remaining")).ToNot(BeEmpty())
	}
}

func TestRateLimitMiddleware_ExceedLimit(t *testing.T) {
	RegisterTestingT(t)

	rl := newTestRateLimiter()
	rl.SetConfig("/test", RateLimitConfig{Requests: 3, Window: time.Minute})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.RateLimitMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)

		if i < 3 {
			Expect(w.Code).To(Equal(200))
		} else {
			Expect(w.Code).To(Equal(http.StatusTooManyRequests))
			Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal("0"))
		}
	}
}

func TestRateLimitMiddleware_KeysByOwner(t *testing.T) {
	RegisterTestingT(t)

	rl := newTestRateLimiter()
	rl.SetConfig("/test", RateLimitConfig{Requests: 2, Window: time.Minute})

	gin.SetMode(gin.TestMode)
	router := gin.New()

	owner := "user-a"
	router.Use(func(c *gin.Context) {
		c.Set("x-owner-id", owner)
		c.Next()
	})
	router.Use(rl.RateLimitMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	hit := func() int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		return w.Code
	}

	Expect(hit()).To(Equal(200))
	Expect(hit()).To(Equal(200))
	Expect(hit()).To(Equal(http.StatusTooManyRequests))

	// A different owner still has a fresh allowance.
	owner = "user-b"
	Expect(hit()).To(Equal(200))
}

func TestNormalizePath(t *testing.T) {
	RegisterTestingT(t)

	rl := newTestRateLimiter()

	Expect(rl.normalizePath("/todos/42")).To(Equal("/todos/:id"))
	Expect(rl.normalizePath("/todos/completed")).To(Equal("/todos/completed"))
	Expect(rl.normalizePath("/todos/pending")).To(Equal("/todos/pending"))
	Expect(rl.normalizePath("/health")).To(Equal("/health"))
}
