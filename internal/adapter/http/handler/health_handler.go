package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"todoapi/internal/core/model/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check answers without authentication so probes can reach it.
func (h *HealthHandler) Check(c *gin.Context) {
	environment := os.Getenv("APP_ENV")

	if environment == "" {
		environment = "development"
	}

	c.JSON(http.StatusOK, response.HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: environment,
		Message:     "API is running",
	})
}
