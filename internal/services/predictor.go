// Package services owns the serving-side lifecycle of the expected-yards
// model: callers inject the model and dataset dependencies explicitly, and
// the service enforces single-writer/multiple-reader discipline around
// retraining.
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/gridironlabs/playcall/internal/dataset"
	"github.com/gridironlabs/playcall/internal/features"
	"github.com/gridironlabs/playcall/internal/model"
	"github.com/gridironlabs/playcall/internal/models"
	"github.com/gridironlabs/playcall/pkg/logger"
)

// ErrTrainRateLimited is returned when retrain requests arrive faster than
// the configured budget. Training is a long synchronous CPU-bound call.
var ErrTrainRateLimited = fmt.Errorf("training rate limit exceeded")

// PredictorService wraps the model for concurrent request/response use.
// Inference takes the read lock; retraining takes the write lock, so no
// reader ever observes a half-replaced model.
type PredictorService struct {
	mu        sync.RWMutex
	model     *model.ExpectedYardsModel
	preparer  *dataset.Preparer
	store     *dataset.Store // optional; nil disables the run registry
	limiter   *rate.Limiter
	modelPath string
	logger    *logrus.Logger
}

// NewPredictorService builds the service around an injected model. store may
// be nil when no database is configured.
func NewPredictorService(m *model.ExpectedYardsModel, preparer *dataset.Preparer, store *dataset.Store, modelPath string, trainsPerMinute int) *PredictorService {
	if trainsPerMinute <= 0 {
		trainsPerMinute = 1
	}
	return &PredictorService{
		model:     m,
		preparer:  preparer,
		store:     store,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(trainsPerMinute)), 1),
		modelPath: modelPath,
		logger:    logger.GetLogger(),
	}
}

// Situation is the plain-scalar input surface of the prediction operations.
type Situation struct {
	Down           int `json:"down" binding:"required,min=1,max=4"`
	YardsToGo      int `json:"yards_to_go" binding:"required,min=1,max=50"`
	DistanceToGoal int `json:"distance_to_goal" binding:"required,min=1,max=99"`
	Quarter        int `json:"quarter,omitempty"`
	ScoreDiff      int `json:"score_differential,omitempty"`
}

func (s Situation) featureVector() map[string]float64 {
	quarter := s.Quarter
	if quarter == 0 {
		quarter = 1
	}
	return features.Build(s.Down, s.YardsToGo, s.DistanceToGoal, quarter, s.ScoreDiff)
}

// Predict returns expected yards for one play-type hypothesis.
func (s *PredictorService) Predict(sit Situation, playType string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Predict(sit.featureVector(), playType)
}

// Recommend compares both hypotheses for the situation.
func (s *PredictorService) Recommend(sit Situation) (*model.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Recommend(sit.featureVector())
}

// Explain returns the per-feature attribution for one hypothesis.
func (s *PredictorService) Explain(sit Situation, playType string) ([]model.Attribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Explain(sit.featureVector(), playType)
}

// FeatureImportance returns the global importance ranking.
func (s *PredictorService) FeatureImportance() ([]model.Importance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.FeatureImportance()
}

// Info describes the serving model.
func (s *PredictorService) Info() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"model_kind":    s.model.Kind(),
		"trained":       s.model.IsTrained(),
		"feature_count": len(s.model.FeatureNames()),
	}
}

// Retrain prepares the raw records, trains under the write lock, persists the
// model and records the run. Inference is blocked only for the duration of
// the training call itself.
func (s *PredictorService) Retrain(raw []models.PlayRecord, source string) (*model.TrainingReport, error) {
	if !s.limiter.Allow() {
		return nil, ErrTrainRateLimited
	}

	X, y, names, err := s.preparer.Prepare(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	report, err := s.model.Train(X, y, names)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.modelPath != "" {
		s.mu.RLock()
		err = s.model.Save(s.modelPath)
		s.mu.RUnlock()
		if err != nil {
			return nil, err
		}
	}

	if s.store != nil {
		run := &models.TrainingRun{
			ID:        uuid.NewString(),
			ModelKind: report.Kind,
			RowCount:  report.Rows,
			Features:  report.FeatureCount,
			TrainRMSE: report.TrainRMSE,
			TestRMSE:  report.EvalRMSE,
			TrainMAE:  report.TrainMAE,
			TestMAE:   report.EvalMAE,
			TrainR2:   report.TrainR2,
			TestR2:    report.EvalR2,
			ModelPath: s.modelPath,
			Source:    source,
		}
		if err := s.store.RecordTrainingRun(run); err != nil {
			s.logger.WithError(err).Warn("Failed to record training run")
		}
	}

	return report, nil
}
