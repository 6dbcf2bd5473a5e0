package routes

import (
	"github.com/gin-gonic/gin"

	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/pkg/config"
	"todoapi/pkg/tracing"
)

type HandlersConfig struct {
	HealthHandler *handler.HealthHandler
	TaskHandler   *handler.TaskHandler
}

func SetupRouter(handlers HandlersConfig, metrics *tracing.AppMetrics, logger *config.LokiLogger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *tracing.AppMetrics, logger *config.LokiLogger, appConfig *config.AppConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.SetupGinMiddlewareWithConfig(router, "todoapi", metrics, logger, appConfig)

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	if handlers.HealthHandler != nil {
		setupPublicRoutes(router, handlers.HealthHandler)
	}

	if handlers.TaskHandler != nil {
		setupProtectedRoutes(router, handlers.TaskHandler)
	}

	return router
}

func setupPublicRoutes(router *gin.Engine, healthHandler *handler.HealthHandler) {
	public := router.Group("/")
	{
		public.GET("/health", healthHandler.Check)
	}
}

func setupProtectedRoutes(router *gin.Engine, taskHandler *handler.TaskHandler) {
	protected := router.Group("/")
	protected.Use(middleware.GinJwtMiddleware())
	{
		protected.GET("/todos", taskHandler.GetAllTasks)
		protected.POST("/todos", taskHandler.CreateTask)
		protected.GET("/todos/completed", taskHandler.GetCompletedTasks)
		protected.GET("/todos/pending", taskHandler.GetPendingTasks)
		protected.GET("/todos/:id", taskHandler.GetTask)
		protected.PUT("/todos/:id", taskHandler.UpdateTask)
		protected.DELETE("/todos/:id", taskHandler.DeleteTask)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	if handlers.HealthHandler != nil {
		setupPublicRoutes(router, handlers.HealthHandler)
	}

	if handlers.TaskHandler != nil {
		setupProtectedRoutes(router, handlers.TaskHandler)
	}

	return router
}
