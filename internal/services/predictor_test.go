package services

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironlabs/playcall/internal/dataset"
	"github.com/gridironlabs/playcall/internal/features"
	"github.com/gridironlabs/playcall/internal/model"
)

func newTestService(t *testing.T) *PredictorService {
	t.Helper()
	params := model.DefaultParams()
	params.TreeCount = 40
	params.MaxDepth = 4
	modelPath := filepath.Join(t.TempDir(), "model.json")
	return NewPredictorService(model.New(params), dataset.NewPreparer(), nil, modelPath, 60)
}

func TestRetrainThenPredict(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Predict(Situation{Down: 1, YardsToGo: 10, DistanceToGoal: 50}, features.PlayTypePass)
	assert.ErrorIs(t, err, model.ErrNotTrained)

	report, err := svc.Retrain(dataset.GenerateSynthetic(800, 42), dataset.SourceSynthetic)
	require.NoError(t, err)
	assert.Equal(t, 800, report.Rows)

	pred, err := svc.Predict(Situation{Down: 1, YardsToGo: 10, DistanceToGoal: 50}, features.PlayTypePass)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pred, 0.0)

	rec, err := svc.Recommend(Situation{Down: 3, YardsToGo: 8, DistanceToGoal: 40})
	require.NoError(t, err)
	assert.Contains(t, []string{"run", "pass"}, rec.RecommendedPlay)
}

func TestRetrainRateLimited(t *testing.T) {
	params := model.DefaultParams()
	params.TreeCount = 10
	params.MaxDepth = 3
	svc := NewPredictorService(model.New(params), dataset.NewPreparer(), nil, "", 1)

	raw := dataset.GenerateSynthetic(300, 1)
	_, err := svc.Retrain(raw, dataset.SourceSynthetic)
	require.NoError(t, err)

	_, err = svc.Retrain(raw, dataset.SourceSynthetic)
	assert.ErrorIs(t, err, ErrTrainRateLimited)
}

func TestRetrainPropagatesDataErrors(t *testing.T) {
	svc := newTestService(t)

	var qualityErr *dataset.DataQualityError
	_, err := svc.Retrain(nil, "request")
	// Zero raw rows clean to zero usable rows.
	assert.ErrorAs(t, err, &qualityErr)
}

func TestConcurrentInference(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Retrain(dataset.GenerateSynthetic(500, 7), dataset.SourceSynthetic)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sit := Situation{Down: 1 + i%4, YardsToGo: 1 + i%10, DistanceToGoal: 5 + i*5}
			if _, err := svc.Recommend(sit); err != nil {
				t.Errorf("recommend failed: %v", err)
			}
		}(i)
	}
	wg.Wait()
}

func TestInfo(t *testing.T) {
	svc := newTestService(t)
	info := svc.Info()
	assert.Equal(t, false, info["trained"])
	assert.Equal(t, model.KindBoosted, info["model_kind"])
}
