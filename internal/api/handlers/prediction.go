package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridironlabs/playcall/internal/features"
	"github.com/gridironlabs/playcall/internal/model"
	"github.com/gridironlabs/playcall/internal/services"
	"github.com/gridironlabs/playcall/pkg/utils"
)

type PredictionHandler struct {
	predictor *services.PredictorService
}

func NewPredictionHandler(predictor *services.PredictorService) *PredictionHandler {
	return &PredictionHandler{predictor: predictor}
}

type predictRequest struct {
	services.Situation
	PlayType string `json:"play_type" binding:"required,oneof=run pass"`
}

// Predict returns expected yards for one situation and play-type hypothesis
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid prediction request", err.Error())
		return
	}

	expected, err := h.predictor.Predict(req.Situation, req.PlayType)
	if err != nil {
		sendModelError(c, err)
		return
	}

	utils.SendSuccess(c, gin.H{
		"play_type":      req.PlayType,
		"expected_yards": expected,
	})
}

// Recommend compares run and pass expectations and returns the play call
func (h *PredictionHandler) Recommend(c *gin.Context) {
	var req services.Situation
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid recommendation request", err.Error())
		return
	}

	rec, err := h.predictor.Recommend(req)
	if err != nil {
		sendModelError(c, err)
		return
	}

	utils.SendSuccess(c, rec)
}

// Explain returns per-feature attributions for one hypothesis
func (h *PredictionHandler) Explain(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid explanation request", err.Error())
		return
	}

	attributions, err := h.predictor.Explain(req.Situation, req.PlayType)
	if err != nil {
		sendModelError(c, err)
		return
	}

	utils.SendSuccess(c, attributions)
}

// FeatureImportance returns the global importance ranking
func (h *PredictionHandler) FeatureImportance(c *gin.Context) {
	importance, err := h.predictor.FeatureImportance()
	if err != nil {
		sendModelError(c, err)
		return
	}
	utils.SendSuccess(c, importance)
}

// ModelInfo describes the serving model
func (h *PredictionHandler) ModelInfo(c *gin.Context) {
	utils.SendSuccess(c, h.predictor.Info())
}

// Features returns the engineered feature vector for a situation without
// touching the model; useful for UI display of derived buckets.
func (h *PredictionHandler) Features(c *gin.Context) {
	var req services.Situation
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid feature request", err.Error())
		return
	}

	quarter := req.Quarter
	if quarter == 0 {
		quarter = 1
	}
	utils.SendSuccess(c, features.Build(req.Down, req.YardsToGo, req.DistanceToGoal, quarter, req.ScoreDiff))
}

// sendModelError maps the core error taxonomy to HTTP statuses.
func sendModelError(c *gin.Context, err error) {
	var schemaErr *model.SchemaError
	var persistErr *model.PersistenceError

	switch {
	case errors.Is(err, model.ErrNotTrained):
		utils.SendError(c, http.StatusConflict,
			utils.NewAppError(utils.ErrCodeNotTrained, "train the model first", err.Error()))
	case errors.As(err, &schemaErr):
		utils.SendError(c, http.StatusBadRequest,
			utils.NewAppError(utils.ErrCodeSchema, "model schema mismatch", err.Error()))
	case errors.As(err, &persistErr):
		utils.SendInternalError(c, err.Error())
	default:
		utils.SendValidationError(c, "prediction failed", err.Error())
	}
}
