package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlpipe/mlpipe/internal/models"
	"github.com/mlpipe/mlpipe/internal/recorder"
	"github.com/mlpipe/mlpipe/internal/train"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model and record the run",
	Long: `Fit a boosted-trees regressor on a CSV dataset, evaluate it with
cross-validation and a held-out split, and record one finalized run:
parameters, scores, the per-round training curve, the feature names, and
the serialized model with its inferred signature.`,
	Example: `  # Train with default hyperparameters
  mlpipe train --data data/clean.csv

  # Train with explicit hyperparameters
  mlpipe train --data data/clean.csv --learning-rate 0.05 --max-depth 7 --rounds 100`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("data", "data/clean.csv", "Training dataset (headered CSV)")
	trainCmd.Flags().String("target", "quality", "Target column name")
	trainCmd.Flags().Float64("learning-rate", 0.1, "Boosting learning rate")
	trainCmd.Flags().Int("max-depth", 5, "Maximum tree depth")
	trainCmd.Flags().Int("rounds", 50, "Number of boosting rounds")
	trainCmd.Flags().Float64("holdout", 0.25, "Held-out fraction of the dataset")
	trainCmd.Flags().Int("folds", 5, "Cross-validation folds")
	trainCmd.Flags().Int64("seed", 42, "Shuffle seed for splits")
	trainCmd.Flags().String("run-name", "", "Run name (default: timestamp-based)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, client, err := newClient()
	if err != nil {
		return err
	}

	// Parse flags
	dataPath, _ := cmd.Flags().GetString("data")
	target, _ := cmd.Flags().GetString("target")
	learningRate, _ := cmd.Flags().GetFloat64("learning-rate")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	rounds, _ := cmd.Flags().GetInt("rounds")
	holdout, _ := cmd.Flags().GetFloat64("holdout")
	folds, _ := cmd.Flags().GetInt("folds")
	seed, _ := cmd.Flags().GetInt64("seed")
	runName, _ := cmd.Flags().GetString("run-name")

	params := train.Params{
		LearningRate: learningRate,
		MaxDepth:     maxDepth,
		Rounds:       rounds,
	}

	ds, err := train.LoadCSV(dataPath, target)
	if err != nil {
		return err
	}

	trainSet, testSet := ds.Split(holdout, seed)

	cvScore, err := train.CrossValidate(trainSet, params, folds, seed)
	if err != nil {
		return fmt.Errorf("cross-validation failed: %w", err)
	}

	model, curve, err := train.Fit(trainSet, params)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	holdoutScore := model.Evaluate(testSet)

	// Serialize the model next to its MLmodel descriptor before
	// attaching it to the run.
	modelDir, err := os.MkdirTemp("", "mlpipe-model-")
	if err != nil {
		return fmt.Errorf("failed to create model staging directory: %w", err)
	}
	defer os.RemoveAll(modelDir)

	if err := model.Save(modelDir, model.InferSignature(trainSet)); err != nil {
		return err
	}

	ctx := context.Background()
	experimentID, err := client.EnsureExperiment(ctx, cfg.Experiment)
	if err != nil {
		return err
	}

	rec := recorder.New(client, logger, experimentID)
	runInfo, err := rec.Record(ctx, recorder.RunSpec{
		Name:   runName,
		Params: params.Map(),
		Scores: models.ScoreReport{
			CVScore:      cvScore,
			HoldoutScore: holdoutScore,
			TrainCurve:   curve,
		},
		Features: ds.Features,
		ModelDir: modelDir,
	})
	if err != nil {
		logger.Error("training run failed", "error", err)
		fmt.Fprintf(os.Stderr, "Training run failed. See %s for details.\n", cfg.LogFile)
		return err
	}

	fmt.Printf("Run ID: %s\n", runInfo.RunID)
	fmt.Printf("  cv_rmse:   %.4f\n", cvScore)
	fmt.Printf("  test_rmse: %.4f\n", holdoutScore)

	return nil
}
