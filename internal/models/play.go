package models

import (
	"time"
)

// PlayRecord is one observed offensive play as ingested from an upstream
// play-by-play source. Optional context columns (quarter, score differential)
// are pointers so that absence is distinguishable from zero.
type PlayRecord struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	PlayType       string   `gorm:"index" json:"play_type"`
	YardsGained    *float64 `json:"yards_gained"`
	Down           *int     `json:"down"`
	YardsToGo      *int     `json:"yards_to_go"`
	DistanceToGoal *int     `json:"distance_to_goal"`
	Quarter        *int     `json:"quarter,omitempty"`
	ScoreDiff      *int     `json:"score_differential,omitempty"`

	// Source provenance: "nflfastr", "csv", "synthetic". Synthetic rows are
	// never mixed with real rows without the caller opting in.
	Source string `gorm:"index;default:csv" json:"source"`

	CreatedAt time.Time `json:"created_at"`
}

// TrainingRun records one completed training call: dataset size, model kind,
// both partitions' metrics and where the model artifact was written.
type TrainingRun struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ModelKind string    `json:"model_kind"`
	RowCount  int       `json:"row_count"`
	Features  int       `json:"feature_count"`
	TrainRMSE float64   `json:"train_rmse"`
	TestRMSE  float64   `json:"test_rmse"`
	TrainMAE  float64   `json:"train_mae"`
	TestMAE   float64   `json:"test_mae"`
	TrainR2   float64   `json:"train_r2"`
	TestR2    float64   `json:"test_r2"`
	ModelPath string    `json:"model_path"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
