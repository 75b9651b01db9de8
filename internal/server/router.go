package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/visionforge/visionforge-backend/internal/handlers"
)

type RouterConfig struct {
	ReleaseHandler *handlers.ReleaseHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/projects/:projectID/releases", cfg.ReleaseHandler.GenerateRelease)
		api.GET("/projects/:projectID/releases", cfg.ReleaseHandler.GetHistory)
		api.DELETE("/projects/:projectID/releases/:id", cfg.ReleaseHandler.CleanupFailedRelease)
		api.GET("/releases/:id/progress", cfg.ReleaseHandler.GetProgress)
	}

	return router
}
