package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/device-mockup/internal/http/handlers"
	"github.com/phambaophuc/device-mockup/internal/http/middleware"
	"go.uber.org/zap"
)

// Options tunes the middleware applied to the mockup endpoints.
type Options struct {
	MaxBodySize     int64
	RateLimiter     middleware.WindowCounter
	RateLimitCount  int
	RateLimitWindow time.Duration
}

type Router struct {
	mockupHandler *handlers.MockupHandler
	logger        *zap.Logger
	options       Options
}

func NewRouter(
	mockupHandler *handlers.MockupHandler,
	logger *zap.Logger,
	options Options,
) *Router {
	return &Router{
		mockupHandler: mockupHandler,
		logger:        logger,
		options:       options,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	mockupTypes := middleware.RequireContentType("application/json", "multipart/form-data", "text/plain")
	multipartOnly := middleware.RequireContentType("multipart/form-data")

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.mockupHandler.HealthCheck)
		v1.GET("/models", r.mockupHandler.ListModels)

		mockups := v1.Group("/mockups")
		{
			mockups.GET("/jobs/:id", r.mockupHandler.GetJob)
			mockups.GET("/recent", r.mockupHandler.RecentMockups)

			writes := mockups.Group("",
				middleware.RateLimit(r.options.RateLimiter, r.options.RateLimitCount, r.options.RateLimitWindow, r.logger),
				middleware.MaxBodySize(r.options.MaxBodySize),
			)
			writes.POST("", mockupTypes, r.mockupHandler.CreateMockup)
			writes.POST("/batch", multipartOnly, r.mockupHandler.BatchMockups)
			writes.POST("/jobs", mockupTypes, r.mockupHandler.CreateJob)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Device mockup service is running",
		})
	})

	return router
}
