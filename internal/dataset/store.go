package dataset

import (
	"fmt"

	"github.com/gridironlabs/playcall/internal/models"
	"github.com/gridironlabs/playcall/pkg/database"
)

// Store persists play records and training runs in the local database. It is
// an alternative raw source to CSV ingestion; the preparer consumes either.
type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.PlayRecord{}, &models.TrainingRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate play tables: %w", err)
	}
	return &Store{db: db}, nil
}

// SavePlays inserts play records in batches.
func (s *Store) SavePlays(records []models.PlayRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(records, 500).Error; err != nil {
		return fmt.Errorf("failed to save play records: %w", err)
	}
	return nil
}

// LoadPlays returns stored play records. Synthetic rows are excluded unless
// the caller opts in.
func (s *Store) LoadPlays(includeSynthetic bool) ([]models.PlayRecord, error) {
	var records []models.PlayRecord
	q := s.db.Model(&models.PlayRecord{})
	if !includeSynthetic {
		q = q.Where("source <> ?", SourceSynthetic)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load play records: %w", err)
	}
	return records, nil
}

// RecordTrainingRun appends a training-run row to the registry.
func (s *Store) RecordTrainingRun(run *models.TrainingRun) error {
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to record training run: %w", err)
	}
	return nil
}

// TrainingRuns returns the most recent runs, newest first.
func (s *Store) TrainingRuns(limit int) ([]models.TrainingRun, error) {
	var runs []models.TrainingRun
	if err := s.db.Order("created_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to load training runs: %w", err)
	}
	return runs, nil
}
