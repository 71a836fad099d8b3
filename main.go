package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-inquiries-api/config"
	"github.com/kendall-kelly/estate-inquiries-api/controllers"
	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/kendall-kelly/estate-inquiries-api/middleware"
	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/kendall-kelly/estate-inquiries-api/realtime"
	"github.com/kendall-kelly/estate-inquiries-api/repository"
	"github.com/kendall-kelly/estate-inquiries-api/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.SetConfig(cfg)
	logger.Init(cfg.GoEnv, cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Get().Info().Str("env", cfg.GoEnv).Msg("Starting Estate Inquiries API server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to migrate database")
	}
	logger.Get().Info().Msg("Database migration completed successfully")

	var images services.ImageService
	if cfg.HasImageStorage() {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			logger.Get().Fatal().Err(err).Msg("Failed to initialize S3 service")
		}
		images = services.NewS3ImageService(s3Service)
	} else {
		logger.Get().Warn().Msg("AWS_S3_BUCKET not set, image URLs will be empty")
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)

	var publisher realtime.Publisher = hub
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Get().Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Get().Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		publisher = realtime.NewRedisPublisher(client)
		go realtime.NewRedisRelay(client, hub).Run(ctx)
		logger.Get().Info().Msg("Notifications are relayed through Redis")
	}

	dispatcher := realtime.NewDispatcher(publisher, cfg.NotificationQueueSize)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	directory := repository.NewDirectoryRepository(db)
	controllers.SetInquiryService(services.NewInquiryService(
		repository.NewInquiryRepository(db),
		directory,
		images,
		dispatcher,
	))

	router := setupRouter(cfg, directory, hub)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Get().Info().Msgf("Server is running on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Get().Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error().Err(err).Msg("Server forced to shutdown")
	}
}

// setupRouter wires middleware and routes. users resolves token subjects
// to callers; hub serves websocket subscriptions.
func setupRouter(cfg *config.Config, users middleware.UserLookup, hub *realtime.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), cors.New(corsConfig(cfg)))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoints
		v1.GET("/health", healthCheck)
		v1.GET("/health/database", databaseStatus)
	}

	authed := v1.Group("", authMiddleware(cfg), middleware.ResolveCaller(users, repository.ErrNotFound))
	controllers.RegisterInquiryRoutes(authed)
	authed.GET("/ws", controllers.NewWSHandler(hub, cfg.AllowedOrigins).Subscribe)

	return router
}

// authMiddleware validates Auth0 tokens when configured, HS256 tokens otherwise
func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.UsesAuth0() {
		return middleware.EnsureValidToken(cfg)
	}
	return middleware.EnsureValidHS256Token(cfg.JWTSecret)
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	return c
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Estate Inquiries API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not initialized",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
