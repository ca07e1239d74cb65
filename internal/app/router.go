package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"courier/internal/domain"
	"courier/internal/handler"
	"courier/internal/middleware"
	"courier/internal/repository"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DeliveryHandler *handler.DeliveryHandler
	DriverHandler   *handler.DriverHandler
	UserHandler     *handler.UserHandler
	UserRepo        repository.UserRepository
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(deps.UserRepo)
	idempotent := middleware.IdempotencyMiddleware(deps.RedisClient)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Public routes: no token required.
		v1.POST("/users/register", deps.UserHandler.RegisterClient)
		v1.POST("/drivers/register", deps.UserHandler.RegisterDriver)
		v1.POST("/deliveries/estimate-price", deps.DeliveryHandler.EstimatePrice)
		v1.GET("/deliveries/track", deps.DeliveryHandler.Track)

		// Client routes.
		client := v1.Group("/client", auth, middleware.RequireRole(domain.RoleClient), idempotent)
		{
			client.POST("/deliveries", deps.DeliveryHandler.Create)
			client.GET("/deliveries", deps.DeliveryHandler.List)
			client.GET("/deliveries/:id", deps.DeliveryHandler.Get)
			client.POST("/deliveries/:id/cancel", deps.DeliveryHandler.Cancel)
			client.POST("/deliveries/:id/pay", deps.DeliveryHandler.Pay)
		}

		// Driver routes.
		driver := v1.Group("/driver", auth, middleware.RequireRole(domain.RoleDriver), idempotent)
		{
			driver.GET("/deliveries", deps.DriverHandler.ListAvailable)
			driver.GET("/deliveries/mine", deps.DriverHandler.ListMine)
			driver.POST("/deliveries/:id/accept", deps.DriverHandler.Accept)
			driver.POST("/deliveries/:id/status", deps.DriverHandler.UpdateStatus)
			driver.GET("/earnings", deps.DriverHandler.Earnings)
			driver.POST("/availability", deps.DriverHandler.SetAvailability)
		}

		// Routes for any authenticated user.
		v1.GET("/notifications", auth, deps.UserHandler.ListNotifications)
	}

	return router
}
