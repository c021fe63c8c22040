package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"bikeride/internal/handler"
	"bikeride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	JourneyHandler  *handler.JourneyHandler
	LocationHandler *handler.LocationHandler
	LiveHandler     *handler.LiveHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
	AllowedOrigins  []string
	IdempotencyTTL  time.Duration
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  deps.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Length", "Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.PrometheusMiddleware())
	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.IdempotencyTTL))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("/:id/journeys", deps.JourneyHandler.CreateJourney)
			bookings.POST("/:id/journeys/:journeyId/complete", deps.JourneyHandler.CompleteRide)
		}

		// Journey routes.
		journeys := v1.Group("/journeys")
		{
			journeys.GET("", deps.JourneyHandler.GetAll)
			journeys.GET("/:id", deps.JourneyHandler.GetJourney)
			journeys.POST("/:id/start", deps.JourneyHandler.StartRide)
			journeys.POST("/:id/pause", deps.JourneyHandler.PauseRide)
			journeys.POST("/:id/resume", deps.JourneyHandler.ResumeRide)
			journeys.POST("/:id/locations", deps.LocationHandler.IngestSample)
			journeys.GET("/:id/movement", deps.JourneyHandler.GetMovementPattern)
			journeys.GET("/:id/path", deps.JourneyHandler.GetPath)
			journeys.GET("/:id/live", deps.LiveHandler.Watch)
		}
	}

	return router
}
