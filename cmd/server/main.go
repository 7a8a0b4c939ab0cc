package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/voyagee/travel-backend/internal/config"
	"github.com/voyagee/travel-backend/internal/database"
	"github.com/voyagee/travel-backend/internal/handlers"
	"github.com/voyagee/travel-backend/internal/middleware"
	"github.com/voyagee/travel-backend/internal/services"
	"github.com/voyagee/travel-backend/internal/telemetry"
	"github.com/voyagee/travel-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Voyagee API")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Tracing, logger)
	if err != nil {
		logger.Fatalf("Failed to set up tracing: %v", err)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	userRepository := database.NewUserRepository(db)
	destinationRepository := database.NewDestinationRepository(db)
	tourRepository := database.NewTourRepository(db)
	itineraryRepository := database.NewItineraryRepository(db)

	// Services
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenExpiry)
	auditService := services.NewAuditService(logger, cfg.Security.EnableAuditLog)
	authService := services.NewAuthService(
		db,
		userRepository,
		services.NewBcryptHasher(cfg.Security.BcryptCost),
		jwtService,
		auditService,
		logger,
	)
	destinationService := services.NewDestinationService(destinationRepository)
	tourService := services.NewTourService(tourRepository, destinationRepository)
	itineraryService := services.NewItineraryService(db, itineraryRepository, tourRepository)
	logger.Info("Services initialized")

	// Handlers
	pager := handlers.NewPager(cfg.Pagination)
	routes := handlers.Routes{
		Auth:         handlers.NewAuthHandler(authService, logger),
		Destinations: handlers.NewDestinationHandler(destinationService, pager, logger),
		Tours:        handlers.NewTourHandler(tourService, pager, logger),
		Itineraries:  handlers.NewItineraryHandler(itineraryService, pager, logger),
		RequireAuth:  middleware.AuthMiddleware(jwtService, authService, logger),
		OptionalAuth: middleware.OptionalAuth(jwtService, authService, logger),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", handlers.Welcome(version))
	router.GET("/health", handlers.HealthCheck(db, version))
	routes.Register(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Errorf("Failed to flush traces: %v", err)
	}

	logger.Info("Server exited successfully")
}
