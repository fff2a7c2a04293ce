package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"civix-be/config"
	"civix-be/middlewares"
	"civix-be/models"
	"civix-be/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger, err := config.InitLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db := config.ConnectDB()
	if db == nil {
		config.Log.Fatal("Failed to connect to MongoDB")
	}
	config.Log.Info("MongoDB connection established successfully!")

	if err := models.EnsureUserIndex(db.Collection("users")); err != nil {
		config.Log.Fatalw("Failed to ensure user index", "error", err)
	}

	config.ConnectRedis()

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.BodyLimit())

	routes.AuthRoutes(r)
	routes.IssueRoutes(r)
	routes.UserRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		config.Log.Fatalf("Failed to start server: %v", err)
	}
}
