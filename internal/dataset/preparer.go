// Package dataset turns bulk play-by-play records into the model-ready
// design matrix (X, y, feature_names). The preparer owns cleaning rules,
// feature engineering and column assembly; it never touches model internals.
package dataset

import (
	"github.com/sirupsen/logrus"

	"github.com/gridironlabs/playcall/internal/features"
	"github.com/gridironlabs/playcall/internal/models"
	"github.com/gridironlabs/playcall/pkg/logger"
)

// Cleaning bounds. Rows outside these ranges are dropped as entry errors or
// non-scrimmage noise.
const (
	minYardsGained = -25
	maxYardsGained = 99
	maxYardsToGo   = 30
)

// Defaults applied when an optional context column is absent.
const (
	defaultQuarter   = 1
	defaultScoreDiff = 0
)

// Engineered is one cleaned play with its derived feature vector and target.
type Engineered struct {
	Features map[string]float64
	Target   float64
}

// Preparer transforms raw play records into (X, y, feature_names).
type Preparer struct {
	logger *logrus.Logger
}

func NewPreparer() *Preparer {
	return &Preparer{logger: logger.GetLogger()}
}

// criticalColumns are the raw fields a record must carry to be usable.
var criticalColumns = []string{"play_type", "yards_gained", "down", "yards_to_go", "distance_to_goal"}

// checkCriticalColumns reports the first critical column that is absent from
// every record in the collection.
func (p *Preparer) checkCriticalColumns(raw []models.PlayRecord) error {
	if len(raw) == 0 {
		return nil
	}
	present := make(map[string]bool, len(criticalColumns))
	for _, r := range raw {
		if r.PlayType != "" {
			present["play_type"] = true
		}
		if r.YardsGained != nil {
			present["yards_gained"] = true
		}
		if r.Down != nil {
			present["down"] = true
		}
		if r.YardsToGo != nil {
			present["yards_to_go"] = true
		}
		if r.DistanceToGoal != nil {
			present["distance_to_goal"] = true
		}
	}
	for _, col := range criticalColumns {
		if !present[col] {
			return &SchemaError{Column: col}
		}
	}
	return nil
}

// Clean drops rows missing critical fields, rows that are not run/pass
// scrimmage plays, and rows outside the realistic value ranges. Row order is
// irrelevant downstream.
func (p *Preparer) Clean(raw []models.PlayRecord) []models.PlayRecord {
	cleaned := make([]models.PlayRecord, 0, len(raw))
	for _, r := range raw {
		if r.PlayType != features.PlayTypeRun && r.PlayType != features.PlayTypePass {
			continue
		}
		if r.YardsGained == nil || r.Down == nil || r.YardsToGo == nil || r.DistanceToGoal == nil {
			continue
		}
		if *r.YardsGained < minYardsGained || *r.YardsGained > maxYardsGained {
			continue
		}
		if *r.YardsToGo <= 0 || *r.YardsToGo > maxYardsToGo {
			continue
		}
		if *r.Down < 1 || *r.Down > 4 {
			continue
		}
		if *r.DistanceToGoal < 1 || *r.DistanceToGoal > 99 {
			continue
		}
		cleaned = append(cleaned, r)
	}

	p.logger.WithFields(logrus.Fields{
		"raw_rows":     len(raw),
		"cleaned_rows": len(cleaned),
	}).Debug("Cleaned play records")

	return cleaned
}

// Engineer derives the full feature vector for every cleaned record, using
// the record's actual play type for the is_pass/is_run pair. Missing optional
// context defaults to a neutral value rather than failing.
func (p *Preparer) Engineer(cleaned []models.PlayRecord) []Engineered {
	out := make([]Engineered, 0, len(cleaned))
	for _, r := range cleaned {
		quarter := defaultQuarter
		if r.Quarter != nil {
			quarter = *r.Quarter
		}
		scoreDiff := defaultScoreDiff
		if r.ScoreDiff != nil {
			scoreDiff = *r.ScoreDiff
		}

		f := features.Build(*r.Down, *r.YardsToGo, *r.DistanceToGoal, quarter, scoreDiff)
		f = features.WithPlayType(f, r.PlayType)

		out = append(out, Engineered{Features: f, Target: *r.YardsGained})
	}
	return out
}

// Assemble selects the canonical ordered column list that is actually present
// in the engineered rows, fills gaps with 0 and splits into X and y. The
// returned names are the authoritative training schema.
func (p *Preparer) Assemble(engineered []Engineered) (X [][]float64, y []float64, names []string) {
	present := make(map[string]bool)
	for _, e := range engineered {
		for k := range e.Features {
			present[k] = true
		}
	}
	for _, name := range features.Vocabulary() {
		if present[name] {
			names = append(names, name)
		}
	}

	X = make([][]float64, len(engineered))
	y = make([]float64, len(engineered))
	for i, e := range engineered {
		row := make([]float64, len(names))
		for j, name := range names {
			row[j] = e.Features[name] // absent keys read as 0
		}
		X[i] = row
		y[i] = e.Target
	}
	return X, y, names
}

// Prepare chains the critical-column check, Clean, Engineer and Assemble.
func (p *Preparer) Prepare(raw []models.PlayRecord) (X [][]float64, y []float64, names []string, err error) {
	if err := p.checkCriticalColumns(raw); err != nil {
		return nil, nil, nil, err
	}
	cleaned := p.Clean(raw)
	if len(cleaned) == 0 {
		return nil, nil, nil, &DataQualityError{RawRows: len(raw)}
	}
	X, y, names = p.Assemble(p.Engineer(cleaned))

	p.logger.WithFields(logrus.Fields{
		"rows":     len(X),
		"features": len(names),
	}).Info("Prepared training dataset")

	return X, y, names, nil
}
