package main

import (
	"flag"
	"net/http"

	"options-collector/internal/api"
	"options-collector/internal/config"
	"options-collector/internal/database"
	"options-collector/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var addr = flag.String("addr", ":8080", "listen address for the read API")

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("configuration error: %v", err)
	}
	logger.Init(cfg.LogLevel)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS for the dashboard
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.SetupRoutes(r.Group("/api"), db)

	logrus.WithField("addr", *addr).Info("read API listening")
	if err := r.Run(*addr); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
