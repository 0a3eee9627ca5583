package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gridironlabs/playcall/internal/models"
)

// Header aliases accepted for the raw columns. Upstream play-by-play exports
// disagree on naming (nflfastR uses ydstogo/yardline_100).
var columnAliases = map[string]string{
	"play_type":          "play_type",
	"yards_gained":       "yards_gained",
	"down":               "down",
	"ydstogo":            "yards_to_go",
	"yards_to_go":        "yards_to_go",
	"yardline_100":       "distance_to_goal",
	"distance_to_goal":   "distance_to_goal",
	"quarter":            "quarter",
	"qtr":                "quarter",
	"score_differential": "score_differential",
	"score_diff":         "score_differential",
}

// LoadCSV reads bulk play records from a CSV export. The five critical
// columns must be present in the header; quarter and score differential are
// optional. Unparseable cells leave the field unset so that cleaning can
// drop the row.
func LoadCSV(path string) ([]models.PlayRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open play data: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses play records from r. Split out from LoadCSV for testing.
func ReadCSV(r io.Reader) ([]models.PlayRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Map canonical column name to its index.
	index := make(map[string]int)
	for i, col := range header {
		if canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(col))]; ok {
			index[canonical] = i
		}
	}
	for _, col := range []string{"play_type", "yards_gained", "down", "yards_to_go", "distance_to_goal"} {
		if _, ok := index[col]; !ok {
			return nil, &SchemaError{Column: col}
		}
	}

	var records []models.PlayRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		rec := models.PlayRecord{
			PlayType: strings.ToLower(strings.TrimSpace(row[index["play_type"]])),
			Source:   "csv",
		}
		rec.YardsGained = parseFloat(row[index["yards_gained"]])
		rec.Down = parseInt(row[index["down"]])
		rec.YardsToGo = parseInt(row[index["yards_to_go"]])
		rec.DistanceToGoal = parseInt(row[index["distance_to_goal"]])
		if i, ok := index["quarter"]; ok {
			rec.Quarter = parseInt(row[i])
		}
		if i, ok := index["score_differential"]; ok {
			rec.ScoreDiff = parseInt(row[i])
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	// Some exports write integral columns as floats ("3.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		v := int(f)
		return &v
	}
	return nil
}
