// Command train runs the offline training pipeline: load play records from a
// CSV export (falling back to labeled synthetic data when none exists),
// prepare the design matrix, fit the model, print the report and top
// importances, and persist the artifact for the serving process.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gridironlabs/playcall/internal/dataset"
	"github.com/gridironlabs/playcall/internal/features"
	"github.com/gridironlabs/playcall/internal/model"
	"github.com/gridironlabs/playcall/internal/models"
	"github.com/gridironlabs/playcall/internal/services"
	"github.com/gridironlabs/playcall/pkg/config"
	"github.com/gridironlabs/playcall/pkg/database"
	"github.com/gridironlabs/playcall/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger("", cfg.IsDevelopment())
	log := logger.WithService("train")

	// Load raw plays: CSV export if present, else the labeled synthetic
	// generator. Synthetic rows are flagged and never mixed with real data.
	raw, source := loadPlays(cfg, log)
	log.WithFields(logrus.Fields{
		"rows":   len(raw),
		"source": source,
	}).Info("Loaded raw play records")

	params := model.DefaultParams()
	if cfg.ModelKind == model.KindForest {
		params = model.DefaultForestParams()
	}
	params.Seed = cfg.TrainSeed

	preparer := dataset.NewPreparer()
	X, y, names, err := preparer.Prepare(raw)
	if err != nil {
		log.Fatalf("Failed to prepare dataset: %v", err)
	}

	eyModel := model.New(params)
	report, err := eyModel.Train(X, y, names)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	fmt.Println("=== Model Performance ===")
	fmt.Printf("Train RMSE: %.3f yards\n", report.TrainRMSE)
	fmt.Printf("Eval RMSE:  %.3f yards\n", report.EvalRMSE)
	fmt.Printf("Train MAE:  %.3f yards\n", report.TrainMAE)
	fmt.Printf("Eval MAE:   %.3f yards\n", report.EvalMAE)
	fmt.Printf("Train R2:   %.3f\n", report.TrainR2)
	fmt.Printf("Eval R2:    %.3f\n", report.EvalR2)

	if err := eyModel.Save(cfg.ModelPath); err != nil {
		log.Fatalf("Failed to save model: %v", err)
	}

	importance, err := eyModel.FeatureImportance()
	if err != nil {
		log.Fatalf("Failed to read importances: %v", err)
	}
	fmt.Println("\nTop 15 features:")
	for i, imp := range importance {
		if i >= 15 {
			break
		}
		fmt.Printf("%2d. %-25s %.4f\n", i+1, imp.Feature, imp.Score)
	}

	printSampleScenarios(eyModel)
	recordRun(cfg, report, source, log)
}

func loadPlays(cfg *config.Config, log *logrus.Entry) ([]models.PlayRecord, string) {
	if _, err := os.Stat(cfg.TrainCSVPath); err == nil {
		raw, err := dataset.LoadCSV(cfg.TrainCSVPath)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", cfg.TrainCSVPath, err)
		}
		return raw, "csv"
	}

	log.Warnf("No CSV at %s, generating synthetic training data", cfg.TrainCSVPath)
	return dataset.GenerateSynthetic(cfg.SyntheticRows, cfg.TrainSeed), dataset.SourceSynthetic
}

func printSampleScenarios(eyModel *model.ExpectedYardsModel) {
	scenarios := []struct {
		name string
		sit  services.Situation
	}{
		{"3rd & 7 at midfield", services.Situation{Down: 3, YardsToGo: 7, DistanceToGoal: 50, Quarter: 2}},
		{"1st & 10 in red zone", services.Situation{Down: 1, YardsToGo: 10, DistanceToGoal: 15, Quarter: 3, ScoreDiff: -3}},
		{"4th & 2 at goal line", services.Situation{Down: 4, YardsToGo: 2, DistanceToGoal: 3, Quarter: 4, ScoreDiff: -7}},
		{"2nd & 15 in own territory", services.Situation{Down: 2, YardsToGo: 15, DistanceToGoal: 75, Quarter: 1, ScoreDiff: 10}},
	}

	fmt.Println("\nSample recommendations:")
	for _, s := range scenarios {
		f := featuresFor(s.sit)
		rec, err := eyModel.Recommend(f)
		if err != nil {
			fmt.Printf("  %s: %v\n", s.name, err)
			continue
		}
		fmt.Printf("  %s: %s (run %.2f / pass %.2f, %s)\n",
			s.name, rec.RecommendedPlay, rec.RunExpectedYards, rec.PassExpectedYards, rec.Confidence)
		fmt.Printf("    %s\n", rec.ContextAdvice)
	}
}

func featuresFor(s services.Situation) map[string]float64 {
	quarter := s.Quarter
	if quarter == 0 {
		quarter = 1
	}
	return features.Build(s.Down, s.YardsToGo, s.DistanceToGoal, quarter, s.ScoreDiff)
}

func recordRun(cfg *config.Config, report *model.TrainingReport, source string, log *logrus.Entry) {
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Warnf("Skipping training-run registry: %v", err)
		return
	}
	defer db.Close()

	store, err := dataset.NewStore(db)
	if err != nil {
		log.Warnf("Skipping training-run registry: %v", err)
		return
	}
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
		ModelPath: cfg.ModelPath,
		Source:    source,
	}
	if err := store.RecordTrainingRun(run); err != nil {
		log.Warnf("Failed to record training run: %v", err)
	}
}
