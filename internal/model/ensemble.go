package model

import (
	"fmt"
	"math/rand"
)

// Params configure training of the tree ensemble. Defaults mirror a
// moderate-capacity gradient-boosting setup: enough trees to fit situational
// structure, bounded depth plus sub-sampling to resist overfitting.
type Params struct {
	Kind         string  `json:"kind"` // KindBoosted or KindForest
	TreeCount    int     `json:"tree_count"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	Subsample    float64 `json:"subsample"`
	ColSample    float64 `json:"col_sample"`
	MinLeaf      int     `json:"min_leaf"`
	Seed         int64   `json:"seed"`
}

const (
	KindBoosted = "boosted"
	KindForest  = "forest"
)

// DefaultParams returns the standard gradient-boosting configuration.
func DefaultParams() Params {
	return Params{
		Kind:         KindBoosted,
		TreeCount:    200,
		MaxDepth:     6,
		LearningRate: 0.1,
		Subsample:    0.8,
		ColSample:    0.8,
		MinLeaf:      5,
		Seed:         42,
	}
}

// ensemble is the fitted estimator behind ExpectedYardsModel. Both kinds
// predict a single row and expose normalized impurity-gain importances.
type ensemble interface {
	predict(row []float64) float64
	importances() []float64
}

// boostedEnsemble is a gradient-boosted stack of regression trees fit on
// residuals with shrinkage.
type boostedEnsemble struct {
	Base         float64           `json:"base"`
	LearningRate float64           `json:"learning_rate"`
	Trees        []*regressionTree `json:"trees"`
	Gains        []float64         `json:"gains"`
}

func (b *boostedEnsemble) predict(row []float64) float64 {
	pred := b.Base
	for _, t := range b.Trees {
		pred += b.LearningRate * t.predict(row)
	}
	return pred
}

func (b *boostedEnsemble) importances() []float64 {
	return normalizeGains(b.Gains)
}

// validate checks a deserialized ensemble against the feature schema so that
// a malformed payload is rejected at load time instead of panicking at first
// predict.
func (b *boostedEnsemble) validate(featureCount int) error {
	if len(b.Gains) != featureCount {
		return fmt.Errorf("gains length %d does not match %d features", len(b.Gains), featureCount)
	}
	return validateTrees(b.Trees, featureCount)
}

// forestEnsemble is a bagged ensemble of deeper trees averaged together.
type forestEnsemble struct {
	Trees []*regressionTree `json:"trees"`
	Gains []float64         `json:"gains"`
}

func (f *forestEnsemble) predict(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.Trees))
}

func (f *forestEnsemble) importances() []float64 {
	return normalizeGains(f.Gains)
}

func (f *forestEnsemble) validate(featureCount int) error {
	if len(f.Gains) != featureCount {
		return fmt.Errorf("gains length %d does not match %d features", len(f.Gains), featureCount)
	}
	return validateTrees(f.Trees, featureCount)
}

func validateTrees(trees []*regressionTree, featureCount int) error {
	for ti, t := range trees {
		if t == nil || len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= featureCount {
				return fmt.Errorf("tree %d node %d splits on feature %d of %d", ti, ni, n.Feature, featureCount)
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d has child index outside %d nodes", ti, ni, len(t.Nodes))
			}
		}
	}
	return nil
}

func normalizeGains(gains []float64) []float64 {
	total := 0.0
	for _, g := range gains {
		total += g
	}
	out := make([]float64, len(gains))
	if total <= 0 {
		return out
	}
	for i, g := range gains {
		out[i] = g / total
	}
	return out
}

// fitBoosted trains a gradient-boosted ensemble minimizing squared error.
// Each round fits a tree to the current residuals on a row subsample with a
// feature subsample, then applies the shrunken update.
func fitBoosted(X [][]float64, y []float64, p Params) *boostedEnsemble {
	rng := rand.New(rand.NewSource(p.Seed))
	n := len(y)
	featureCount := len(X[0])

	base := 0.0
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	preds := make([]float64, n)
	residuals := make([]float64, n)
	for i := range preds {
		preds[i] = base
	}

	b := &boostedEnsemble{
		Base:         base,
		LearningRate: p.LearningRate,
		Gains:        make([]float64, featureCount),
	}
	tp := treeParams{maxDepth: p.MaxDepth, minLeaf: p.MinLeaf}

	for round := 0; round < p.TreeCount; round++ {
		for i := range residuals {
			residuals[i] = y[i] - preds[i]
		}
		samples := sampleRows(rng, n, p.Subsample)
		candidates := sampleFeatures(rng, featureCount, p.ColSample)

		tree := growTree(X, residuals, samples, candidates, tp, b.Gains)
		b.Trees = append(b.Trees, tree)

		for i := range preds {
			preds[i] += p.LearningRate * tree.predict(X[i])
		}
	}

	return b
}

// fitForest trains a bagged forest: each tree sees a bootstrap sample of the
// rows and a random subset of the features.
func fitForest(X [][]float64, y []float64, p Params) *forestEnsemble {
	rng := rand.New(rand.NewSource(p.Seed))
	n := len(y)
	featureCount := len(X[0])

	f := &forestEnsemble{Gains: make([]float64, featureCount)}
	tp := treeParams{maxDepth: p.MaxDepth, minLeaf: p.MinLeaf}

	for round := 0; round < p.TreeCount; round++ {
		samples := make([]int, n)
		for i := range samples {
			samples[i] = rng.Intn(n)
		}
		candidates := sampleFeatures(rng, featureCount, p.ColSample)

		f.Trees = append(f.Trees, growTree(X, y, samples, candidates, tp, f.Gains))
	}

	return f
}

func sampleRows(rng *rand.Rand, n int, rate float64) []int {
	if rate >= 1 || rate <= 0 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	k := int(float64(n) * rate)
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)
	return perm[:k]
}

func sampleFeatures(rng *rand.Rand, featureCount int, rate float64) []int {
	k := featureCount
	if rate > 0 && rate < 1 {
		k = int(float64(featureCount) * rate)
		if k < 1 {
			k = 1
		}
	}
	perm := rng.Perm(featureCount)
	candidates := perm[:k]
	return candidates
}
