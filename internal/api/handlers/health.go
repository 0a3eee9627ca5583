package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridironlabs/playcall/internal/services"
)

type HealthHandler struct {
	predictor *services.PredictorService
}

func NewHealthHandler(predictor *services.PredictorService) *HealthHandler {
	return &HealthHandler{predictor: predictor}
}

// GetHealth returns basic health status - always returns 200 if the server is
// running. Used for liveness probes.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "playcall",
	})
}

// GetReady returns readiness - 200 only once a trained model is serving
func (h *HealthHandler) GetReady(c *gin.Context) {
	info := h.predictor.Info()
	if trained, _ := info["trained"].(bool); trained {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
}
