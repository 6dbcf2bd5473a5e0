package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"todoapi/internal/core/model/response"
)

func TestHealthCheckNeedsNoToken(t *testing.T) {
	RegisterTestingT(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthHandler().Check)

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var health response.HealthResponse
	json.Unmarshal(rr.Body.Bytes(), &health)

	Expect(health.Status).To(Equal("healthy"))
	Expect(health.Timestamp).ToNot(BeZero())
	Expect(health.Environment).ToNot(BeEmpty())
}
