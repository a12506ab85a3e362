package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"emcon-server/internal/cache"
	"emcon-server/internal/config"
	"emcon-server/internal/models"
	"emcon-server/internal/routes"
)

func main() {
	// Structured JSON logs
	logrus.SetFormatter(&logrus.JSONFormatter{})

	// Load environment variables; a missing .env is fine in deployment where
	// the environment is set by the process manager.
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on process environment")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	// Create a DatabaseConfig for models
	modelDbConfig := models.DatabaseConfig{
		DSN: cfg.Database.DSN,
	}

	// Initialize database connection
	db, err := models.InitDB(modelDbConfig)
	if err != nil {
		logrus.Fatalf("Error connecting to database: %v", err)
	}

	// Initialize redis (token denylist + search cache)
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		logrus.Fatalf("Error connecting to redis: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes - passing DB, redis and config to let routes.go create the handlers
	routes.SetupRoutes(router, db, redisClient, cfg)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logrus.WithField("port", cfg.Port).Info("Server starting")
	if err := router.Run(serverAddr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
