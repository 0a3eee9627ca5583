package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridironlabs/playcall/internal/dataset"
	"github.com/gridironlabs/playcall/internal/models"
	"github.com/gridironlabs/playcall/internal/services"
	"github.com/gridironlabs/playcall/pkg/utils"
)

type TrainingHandler struct {
	predictor *services.PredictorService
	store     *dataset.Store // nil when no database is configured
}

func NewTrainingHandler(predictor *services.PredictorService, store *dataset.Store) *TrainingHandler {
	return &TrainingHandler{predictor: predictor, store: store}
}

type trainRequest struct {
	// Plays to train on. When empty, stored records are used instead.
	Plays []models.PlayRecord `json:"plays"`
	// Opt-in flag for mixing provenance-flagged synthetic rows from the store.
	IncludeSynthetic bool `json:"include_synthetic"`
}

// Train runs the full prepare-train-persist cycle. Long-running and
// rate-limited; inference keeps serving until the fit itself starts.
func (h *TrainingHandler) Train(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid training request", err.Error())
		return
	}

	raw := req.Plays
	source := "request"
	if len(raw) == 0 {
		if h.store == nil {
			utils.SendValidationError(c, "no plays supplied and no play store configured", "")
			return
		}
		var err error
		raw, err = h.store.LoadPlays(req.IncludeSynthetic)
		if err != nil {
			utils.SendInternalError(c, err.Error())
			return
		}
		source = "store"
	}

	report, err := h.predictor.Retrain(raw, source)
	if err != nil {
		sendTrainingError(c, err)
		return
	}

	utils.SendSuccess(c, report)
}

// Runs lists recent training runs from the registry
func (h *TrainingHandler) Runs(c *gin.Context) {
	if h.store == nil {
		utils.SendSuccess(c, []models.TrainingRun{})
		return
	}
	runs, err := h.store.TrainingRuns(20)
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, runs)
}

func sendTrainingError(c *gin.Context, err error) {
	var schemaErr *dataset.SchemaError
	var qualityErr *dataset.DataQualityError

	switch {
	case errors.Is(err, services.ErrTrainRateLimited):
		utils.SendError(c, http.StatusTooManyRequests,
			utils.NewAppError(utils.ErrCodeRateLimit, "training rate limit exceeded", err.Error()))
	case errors.As(err, &schemaErr):
		utils.SendError(c, http.StatusBadRequest,
			utils.NewAppError(utils.ErrCodeSchema, "raw play data is missing a critical column", err.Error()))
	case errors.As(err, &qualityErr):
		utils.SendError(c, http.StatusUnprocessableEntity,
			utils.NewAppError(utils.ErrCodeDataQuality, "no usable plays after cleaning", err.Error()))
	default:
		utils.SendInternalError(c, err.Error())
	}
}
