package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LoganWeir/muni-predict/internal/handler"
	"github.com/LoganWeir/muni-predict/internal/middleware"
	"github.com/LoganWeir/muni-predict/internal/repository"
	"github.com/LoganWeir/muni-predict/internal/service"
)

// SetupRouter builds the read-only results API over the staging database.
func SetupRouter(db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	tripHandler := handler.NewTripHandler(service.NewTripService(repository.NewTripRepository(db)))
	chunkHandler := handler.NewChunkHandler(service.NewChunkService(repository.NewChunkRepository(db)))
	featureHandler := handler.NewFeatureHandler(service.NewFeatureService(repository.NewFeatureRepository(db)))
	runHandler := handler.NewRunHandler(service.NewRunService(repository.NewRunRepository(db)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Muni Predict API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		trips := api.Group("/trips")
		{
			trips.GET("", tripHandler.GetTrips)
			trips.GET("/:tripId/records", tripHandler.GetTripRecords)
		}

		chunks := api.Group("/chunks")
		{
			chunks.GET("/definitions", chunkHandler.GetDefinitions)
		}

		features := api.Group("/features")
		{
			features.GET("/trips", featureHandler.GetTripFeatures)
			features.GET("/chunks", featureHandler.GetChunkFeatures)
			features.GET("/summary", featureHandler.GetFeatureSummary)
		}

		api.GET("/runs", runHandler.GetRuns)
	}

	return r
}
