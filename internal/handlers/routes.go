package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/middleware"
)

// Routes groups the handlers and auth middleware needed to mount the API
type Routes struct {
	Auth         *AuthHandler
	Destinations *DestinationHandler
	Tours        *TourHandler
	Itineraries  *ItineraryHandler

	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
}

// Register mounts every API route on router. Reads are public, writes need a token.
func (r Routes) Register(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", r.OptionalAuth, r.Auth.Register)
		auth.POST("/login", r.Auth.Login)

		protected := auth.Group("")
		protected.Use(r.RequireAuth)
		{
			protected.GET("/verify-token", r.Auth.VerifyToken)
			protected.GET("/users", middleware.RequireAdmin(), r.Auth.ListUsers)
			protected.GET("/users/:id", r.Auth.GetUser)
			protected.PATCH("/profile", r.Auth.UpdateProfile)
		}
	}

	destinos := router.Group("/destinos")
	{
		destinos.GET("", r.Destinations.List)
		destinos.GET("/usuario/:userId", r.Destinations.ListByUser)
		destinos.GET("/:id", r.Destinations.Get)
		destinos.POST("", r.RequireAuth, r.Destinations.Create)
		destinos.PATCH("/:id", r.RequireAuth, r.Destinations.Update)
		destinos.DELETE("/:id", r.RequireAuth, r.Destinations.Delete)
	}

	passeios := router.Group("/passeios")
	{
		passeios.GET("", r.Tours.List)
		passeios.GET("/usuario/:userId", r.Tours.ListByUser)
		passeios.GET("/:id", r.Tours.Get)
		passeios.POST("", r.RequireAuth, r.Tours.Create)
		passeios.PATCH("/:id", r.RequireAuth, r.Tours.Update)
		passeios.DELETE("/:id", r.RequireAuth, r.Tours.Delete)
	}

	roteiros := router.Group("/roteiros")
	{
		roteiros.GET("", r.Itineraries.List)
		roteiros.GET("/usuario/:userId", r.Itineraries.ListByUser)
		roteiros.GET("/:id", r.Itineraries.Get)
		roteiros.POST("", r.RequireAuth, r.Itineraries.Create)
		roteiros.PATCH("/:id", r.RequireAuth, r.Itineraries.Update)
		roteiros.DELETE("/:id", r.RequireAuth, r.Itineraries.Delete)
		roteiros.POST("/:id/avaliar", r.RequireAuth, r.Itineraries.Rate)
	}
}

// Welcome handles GET /
func Welcome(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":   "Voyagee API",
			"message": "Bem-vindo à API do Voyagee",
			"status":  "online",
			"version": version,
		})
	}
}

// HealthCheck handles GET /health
func HealthCheck(db database.DB, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
