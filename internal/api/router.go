package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gridironlabs/playcall/internal/api/handlers"
	"github.com/gridironlabs/playcall/internal/dataset"
	"github.com/gridironlabs/playcall/internal/services"
)

// SetupRoutes configures all API routes on the given router group. store may
// be nil when the service runs without a local database.
func SetupRoutes(group *gin.RouterGroup, predictor *services.PredictorService, store *dataset.Store) {
	predictionHandler := handlers.NewPredictionHandler(predictor)
	trainingHandler := handlers.NewTrainingHandler(predictor, store)

	group.POST("/predict", predictionHandler.Predict)
	group.POST("/recommend", predictionHandler.Recommend)
	group.POST("/explain", predictionHandler.Explain)
	group.POST("/features", predictionHandler.Features)

	group.GET("/model/importance", predictionHandler.FeatureImportance)
	group.GET("/model/info", predictionHandler.ModelInfo)

	group.POST("/train", trainingHandler.Train)
	group.GET("/train/runs", trainingHandler.Runs)
}
