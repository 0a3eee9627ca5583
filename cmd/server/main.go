package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gridironlabs/playcall/internal/api"
	"github.com/gridironlabs/playcall/internal/api/handlers"
	"github.com/gridironlabs/playcall/internal/api/middleware"
	"github.com/gridironlabs/playcall/internal/dataset"
	"github.com/gridironlabs/playcall/internal/model"
	"github.com/gridironlabs/playcall/internal/services"
	"github.com/gridironlabs/playcall/pkg/config"
	"github.com/gridironlabs/playcall/pkg/database"
	"github.com/gridironlabs/playcall/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logger.InitLogger("", cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the local database (play records + training run registry)
	var store *dataset.Store
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Warnf("Running without play store: %v", err)
	} else {
		defer db.Close()
		store, err = dataset.NewStore(db)
		if err != nil {
			logrus.Fatalf("Failed to initialize play store: %v", err)
		}
	}

	// Build the model and restore the persisted artifact if one exists. A
	// missing or unreadable artifact is not fatal: the service starts
	// untrained and reports 409 until a train call succeeds.
	params := paramsFromConfig(cfg)
	eyModel := model.New(params)
	if err := eyModel.Load(cfg.ModelPath); err != nil {
		var persistErr *model.PersistenceError
		var schemaErr *model.SchemaError
		if errors.As(err, &persistErr) || errors.As(err, &schemaErr) {
			logrus.Warnf("No serving model restored, starting untrained: %v", err)
		}
	}

	predictor := services.NewPredictorService(eyModel, dataset.NewPreparer(), store, cfg.ModelPath, cfg.TrainRateLimit)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(predictor)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, predictor, store)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func paramsFromConfig(cfg *config.Config) model.Params {
	var params model.Params
	if cfg.ModelKind == model.KindForest {
		params = model.DefaultForestParams()
	} else {
		params = model.DefaultParams()
	}
	if cfg.TreeCount > 0 {
		params.TreeCount = cfg.TreeCount
	}
	if cfg.MaxDepth > 0 {
		params.MaxDepth = cfg.MaxDepth
	}
	if cfg.LearningRate > 0 {
		params.LearningRate = cfg.LearningRate
	}
	if cfg.Subsample > 0 {
		params.Subsample = cfg.Subsample
	}
	if cfg.TrainSeed != 0 {
		params.Seed = cfg.TrainSeed
	}
	return params
}
