// Package model implements the expected-yards regressor and the play-calling
// recommendation logic built on top of it.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/gridironlabs/playcall/internal/features"
	"github.com/gridironlabs/playcall/pkg/logger"
)

const evalSplit = 0.2

// ExpectedYardsModel predicts yardage for a hypothetical play and derives
// play-calling recommendations from run/pass prediction pairs.
//
// The zero-value state is untrained; Train fits the estimator and fixes the
// feature schema. After training the model is read-only, so concurrent
// inference calls are safe. Re-training an instance that is concurrently
// serving requires external single-writer discipline (see services package).
type ExpectedYardsModel struct {
	params       Params
	kind         string
	featureNames []string
	estimator    ensemble
	trained      bool
	logger       *logrus.Logger
}

// TrainingReport carries both partitions' metrics so callers can detect
// overfitting (a large train/eval gap is surfaced, not auto-corrected).
type TrainingReport struct {
	Kind         string        `json:"kind"`
	Rows         int           `json:"rows"`
	TrainRows    int           `json:"train_rows"`
	EvalRows     int           `json:"eval_rows"`
	FeatureCount int           `json:"feature_count"`
	TrainRMSE    float64       `json:"train_rmse"`
	EvalRMSE     float64       `json:"eval_rmse"`
	TrainMAE     float64       `json:"train_mae"`
	EvalMAE      float64       `json:"eval_mae"`
	TrainR2      float64       `json:"train_r2"`
	EvalR2       float64       `json:"eval_r2"`
	Duration     time.Duration `json:"duration"`
}

// Recommendation compares the run and pass expected-yards predictions for one
// situation. Ephemeral, never persisted.
type Recommendation struct {
	RecommendedPlay         string  `json:"recommended_play"`
	RunExpectedYards        float64 `json:"run_expected_yards"`
	PassExpectedYards       float64 `json:"pass_expected_yards"`
	ExpectedYardsDifference float64 `json:"expected_yards_difference"`
	Confidence              string  `json:"confidence"`
	ContextAdvice           string  `json:"context_advice"`
}

// Importance is one entry of the globally ranked feature importances.
type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// Attribution is one entry of a per-prediction explanation. Score is the
// global importance scaled by the feature's value for this prediction: it is
// comparable in sign and magnitude across features but is a proxy, not an
// additive Shapley decomposition.
type Attribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Score        float64 `json:"score"`
	Contribution string  `json:"contribution"` // "positive" or "negative"
}

// New creates an untrained model with the given parameters.
func New(params Params) *ExpectedYardsModel {
	if params.Kind == "" {
		params.Kind = KindBoosted
	}
	return &ExpectedYardsModel{
		params: params,
		kind:   params.Kind,
		logger: logger.GetLogger(),
	}
}

// DefaultForestParams returns the random-forest alternative configuration.
func DefaultForestParams() Params {
	p := DefaultParams()
	p.Kind = KindForest
	p.MaxDepth = 10
	p.ColSample = 0.33
	p.Subsample = 1.0
	return p
}

func (m *ExpectedYardsModel) IsTrained() bool { return m.trained }
func (m *ExpectedYardsModel) Kind() string    { return m.kind }
func (m *ExpectedYardsModel) FeatureNames() []string {
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

// Train fits the estimator on a deterministic 80/20 split and evaluates both
// partitions. A second call replaces the fitted state and schema.
func (m *ExpectedYardsModel) Train(X [][]float64, y []float64, featureNames []string) (*TrainingReport, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, fmt.Errorf("invalid training data: %d rows, %d targets", len(X), len(y))
	}
	if len(featureNames) == 0 || len(featureNames) != len(X[0]) {
		return nil, fmt.Errorf("invalid feature names: %d names for %d columns", len(featureNames), len(X[0]))
	}

	start := time.Now()
	m.logger.WithFields(logrus.Fields{
		"rows":       len(X),
		"features":   len(featureNames),
		"model_kind": m.kind,
	}).Info("Training expected yards model")

	// Fixed-seed shuffle split, no stratification (continuous target).
	rng := rand.New(rand.NewSource(m.params.Seed))
	perm := rng.Perm(len(X))
	evalCount := int(float64(len(X)) * evalSplit)
	trainCount := len(X) - evalCount

	trainX := make([][]float64, 0, trainCount)
	trainY := make([]float64, 0, trainCount)
	evalX := make([][]float64, 0, evalCount)
	evalY := make([]float64, 0, evalCount)
	for i, idx := range perm {
		if i < trainCount {
			trainX = append(trainX, X[idx])
			trainY = append(trainY, y[idx])
		} else {
			evalX = append(evalX, X[idx])
			evalY = append(evalY, y[idx])
		}
	}

	switch m.kind {
	case KindBoosted:
		m.estimator = fitBoosted(trainX, trainY, m.params)
	case KindForest:
		m.estimator = fitForest(trainX, trainY, m.params)
	default:
		return nil, fmt.Errorf("unsupported model kind: %q", m.kind)
	}

	m.featureNames = make([]string, len(featureNames))
	copy(m.featureNames, featureNames)
	m.trained = true

	report := &TrainingReport{
		Kind:         m.kind,
		Rows:         len(X),
		TrainRows:    trainCount,
		EvalRows:     evalCount,
		FeatureCount: len(featureNames),
		Duration:     time.Since(start),
	}
	report.TrainRMSE, report.TrainMAE, report.TrainR2 = m.evaluate(trainX, trainY)
	if evalCount > 0 {
		report.EvalRMSE, report.EvalMAE, report.EvalR2 = m.evaluate(evalX, evalY)
	}

	m.logger.WithFields(logrus.Fields{
		"train_rmse": report.TrainRMSE,
		"eval_rmse":  report.EvalRMSE,
		"train_r2":   report.TrainR2,
		"eval_r2":    report.EvalR2,
		"duration":   report.Duration.String(),
	}).Info("Training complete")

	return report, nil
}

func (m *ExpectedYardsModel) evaluate(X [][]float64, y []float64) (rmse, mae, r2 float64) {
	preds := make([]float64, len(y))
	for i, row := range X {
		preds[i] = m.estimator.predict(row)
	}
	var sqSum, absSum float64
	for i := range y {
		d := preds[i] - y[i]
		sqSum += d * d
		absSum += math.Abs(d)
	}
	n := float64(len(y))
	rmse = math.Sqrt(sqSum / n)
	mae = absSum / n
	r2 = stat.RSquaredFrom(preds, y, nil)
	return rmse, mae, r2
}

// Predict returns expected yards for the situation under the given play-type
// hypothesis. Missing schema features are filled with 0, extra keys are
// ignored, and the raw prediction is floored at zero: negative expected
// yardage is not a meaningful outcome for this metric's intended use.
func (m *ExpectedYardsModel) Predict(feats map[string]float64, playType string) (float64, error) {
	if !m.trained {
		return 0, ErrNotTrained
	}
	if playType != features.PlayTypeRun && playType != features.PlayTypePass {
		return 0, fmt.Errorf("unknown play type: %q", playType)
	}

	row := m.inferenceRow(feats, playType)
	return math.Max(0, m.estimator.predict(row)), nil
}

// inferenceRow builds a row in training-schema order with the play-type
// indicator pair forcibly overwritten.
func (m *ExpectedYardsModel) inferenceRow(feats map[string]float64, playType string) []float64 {
	row := make([]float64, len(m.featureNames))
	for i, name := range m.featureNames {
		switch name {
		case "is_pass":
			if playType == features.PlayTypePass {
				row[i] = 1
			}
		case "is_run":
			if playType == features.PlayTypeRun {
				row[i] = 1
			}
		default:
			row[i] = feats[name]
		}
	}
	return row
}

// Recommend predicts both hypotheses and derives the play call. Ties resolve
// to "run". Confidence is "high" above a fixed 1.0-yard gap, else "moderate".
func (m *ExpectedYardsModel) Recommend(feats map[string]float64) (*Recommendation, error) {
	runExpected, err := m.Predict(feats, features.PlayTypeRun)
	if err != nil {
		return nil, err
	}
	passExpected, err := m.Predict(feats, features.PlayTypePass)
	if err != nil {
		return nil, err
	}

	rec := &Recommendation{
		RunExpectedYards:        runExpected,
		PassExpectedYards:       passExpected,
		ExpectedYardsDifference: math.Abs(passExpected - runExpected),
	}
	if passExpected > runExpected {
		rec.RecommendedPlay = features.PlayTypePass
	} else {
		rec.RecommendedPlay = features.PlayTypeRun
	}
	if rec.ExpectedYardsDifference > 1.0 {
		rec.Confidence = "high"
	} else {
		rec.Confidence = "moderate"
	}
	rec.ContextAdvice = contextAdvice(feats)

	return rec, nil
}

// contextAdvice applies the fixed priority order over the input situation:
// fourth-and-short, then third-and-long, then red zone, then generic. Only
// the first matching rule applies.
func contextAdvice(feats map[string]float64) string {
	down := lookupDefault(feats, "down", 1)
	ydstogo := lookupDefault(feats, "ydstogo", 10)
	yardline := lookupDefault(feats, "distance_to_goal", 50)

	switch {
	case down == 4 && ydstogo <= 2:
		return "Short yardage situation - consider power run"
	case down == 3 && ydstogo >= 8:
		return "Passing down - defense expects pass"
	case yardline <= 10:
		return "Red zone - compressed field affects passing"
	default:
		return "Standard down - use expected yards as guide"
	}
}

func lookupDefault(feats map[string]float64, key string, def float64) float64 {
	if v, ok := feats[key]; ok {
		return v
	}
	return def
}

// FeatureImportance returns the estimator's impurity-gain importances keyed
// by schema name, sorted descending; ties break ascending by name for a
// stable order.
func (m *ExpectedYardsModel) FeatureImportance() ([]Importance, error) {
	if !m.trained {
		return nil, ErrNotTrained
	}

	scores := m.estimator.importances()
	out := make([]Importance, len(m.featureNames))
	for i, name := range m.featureNames {
		out[i] = Importance{Feature: name, Score: scores[i]}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Feature < out[b].Feature
	})
	return out, nil
}

// Explain reports, for each schema feature, its input value and an
// attribution score: the global importance scaled by the value, ordered by
// descending magnitude. This proxy ranks what drove the prediction but does
// not sum to the prediction; see DESIGN.md for the strategy decision.
func (m *ExpectedYardsModel) Explain(feats map[string]float64, playType string) ([]Attribution, error) {
	if !m.trained {
		return nil, ErrNotTrained
	}
	if playType != features.PlayTypeRun && playType != features.PlayTypePass {
		return nil, fmt.Errorf("unknown play type: %q", playType)
	}

	row := m.inferenceRow(feats, playType)
	scores := m.estimator.importances()

	out := make([]Attribution, len(m.featureNames))
	for i, name := range m.featureNames {
		score := scores[i] * row[i]
		contribution := "negative"
		if score > 0 {
			contribution = "positive"
		}
		out[i] = Attribution{
			Feature:      name,
			Value:        row[i],
			Score:        score,
			Contribution: contribution,
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		sa, sb := math.Abs(out[a].Score), math.Abs(out[b].Score)
		if sa != sb {
			return sa > sb
		}
		return out[a].Feature < out[b].Feature
	})
	return out, nil
}

// persistedModel is the single opaque unit written to durable storage.
type persistedModel struct {
	Kind         string           `json:"kind"`
	FeatureNames []string         `json:"feature_names"`
	Trained      bool             `json:"trained"`
	Params       Params           `json:"params"`
	Boosted      *boostedEnsemble `json:"boosted,omitempty"`
	Forest       *forestEnsemble  `json:"forest,omitempty"`
}

// Save writes the fitted estimator, schema, kind and trained flag as one unit.
// The write is atomic: temp file in the destination directory, then rename.
func (m *ExpectedYardsModel) Save(path string) error {
	if !m.trained {
		return ErrNotTrained
	}

	p := persistedModel{
		Kind:         m.kind,
		FeatureNames: m.featureNames,
		Trained:      true,
		Params:       m.params,
	}
	switch e := m.estimator.(type) {
	case *boostedEnsemble:
		p.Boosted = e
	case *forestEnsemble:
		p.Forest = e
	}

	data, err := json.Marshal(p)
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistenceError{Op: "save", Path: path, Err: err}
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	m.logger.WithField("path", path).Info("Model saved")
	return nil
}

// Load restores a persisted model into this instance. Load into a fresh
// instance; loading over an already-trained instance is not a defined
// recovery path. Corrupt files yield a PersistenceError and schemas that the
// running feature vocabulary cannot satisfy yield a SchemaError, so callers
// can fall back to retraining.
func (m *ExpectedYardsModel) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &PersistenceError{Op: "load", Path: path, Err: err}
	}

	var p persistedModel
	if err := json.Unmarshal(data, &p); err != nil {
		return &PersistenceError{Op: "load", Path: path, Err: err}
	}
	if !p.Trained || len(p.FeatureNames) == 0 {
		return &PersistenceError{Op: "load", Path: path, Err: fmt.Errorf("persisted model is incomplete")}
	}

	known := make(map[string]bool)
	for _, name := range features.Vocabulary() {
		known[name] = true
	}
	for _, name := range p.FeatureNames {
		if !known[name] {
			return &SchemaError{Feature: name, Reason: "not in the running feature vocabulary"}
		}
	}

	switch p.Kind {
	case KindBoosted:
		if p.Boosted == nil {
			return &PersistenceError{Op: "load", Path: path, Err: fmt.Errorf("boosted model payload missing")}
		}
		if err := p.Boosted.validate(len(p.FeatureNames)); err != nil {
			return &PersistenceError{Op: "load", Path: path, Err: err}
		}
		m.estimator = p.Boosted
	case KindForest:
		if p.Forest == nil {
			return &PersistenceError{Op: "load", Path: path, Err: fmt.Errorf("forest model payload missing")}
		}
		if err := p.Forest.validate(len(p.FeatureNames)); err != nil {
			return &PersistenceError{Op: "load", Path: path, Err: err}
		}
		m.estimator = p.Forest
	default:
		return &PersistenceError{Op: "load", Path: path, Err: fmt.Errorf("unknown model kind %q", p.Kind)}
	}

	m.kind = p.Kind
	m.params = p.Params
	m.featureNames = p.FeatureNames
	m.trained = true

	m.logger.WithFields(logrus.Fields{
		"path":       path,
		"model_kind": m.kind,
		"features":   len(m.featureNames),
	}).Info("Model loaded")
	return nil
}
