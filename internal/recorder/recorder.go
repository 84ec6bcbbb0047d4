package recorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mlpipe/mlpipe/internal/models"
)

// Metric and tag keys written by the recorder. The deploy selector
// queries these same keys.
const (
	MetricCV      = "cv_rmse"
	MetricHoldout = "test_rmse"
	MetricTrain   = "train_rmse"
	TagFeatures   = "features"
)

// Tracker is the slice of the tracking client the recorder needs.
type Tracker interface {
	CreateRun(ctx context.Context, config *models.RunConfig) (*models.RunInfo, error)
	UpdateRun(ctx context.Context, runID string, status models.RunStatus) error
	SetTag(ctx context.Context, runID, key, value string) error
	LogParamsFromMap(ctx context.Context, runID string, params map[string]string) error
	LogMetric(ctx context.Context, runID string, key string, value float64, timestamp *time.Time, step *int64) error
	LogSeries(ctx context.Context, runID string, key string, values []float64) error
	UploadDir(ctx context.Context, runID, localDir, artifactRoot string) error
}

// RunSpec is everything one finished training invocation wants
// recorded: hyperparameters, scores, the feature names, and the
// serialized model directory.
type RunSpec struct {
	Name     string
	Params   map[string]string
	Scores   models.ScoreReport
	Features []string
	ModelDir string
	Tags     map[string]string
}

type Recorder struct {
	tracker      Tracker
	logger       hclog.Logger
	experimentID string
}

func New(tracker Tracker, logger hclog.Logger, experimentID string) *Recorder {
	return &Recorder{
		tracker:      tracker,
		logger:       logger.Named("recorder"),
		experimentID: experimentID,
	}
}

// Record writes one finalized run: parameters unchanged, the two
// scalar scores plus the per-round training curve, a tag listing the
// input feature names, and the model directory as the run's model
// artifact. Any failure marks the run FAILED and propagates; nothing
// is retried.
func (r *Recorder) Record(ctx context.Context, spec RunSpec) (*models.RunInfo, error) {
	config := &models.RunConfig{
		ExperimentID: &r.experimentID,
		Tags:         spec.Tags,
	}
	if spec.Name != "" {
		name := spec.Name
		config.RunName = &name
	}

	runInfo, err := r.tracker.CreateRun(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	r.logger.Info("run created", "run_id", runInfo.RunID)

	if err := r.record(ctx, runInfo.RunID, spec); err != nil {
		// Best effort: the failure we report is the recording one.
		if updateErr := r.tracker.UpdateRun(ctx, runInfo.RunID, models.RunStatusFailed); updateErr != nil {
			r.logger.Error("failed to mark run as failed", "run_id", runInfo.RunID, "error", updateErr)
		}
		return nil, err
	}

	if err := r.tracker.UpdateRun(ctx, runInfo.RunID, models.RunStatusFinished); err != nil {
		return nil, fmt.Errorf("failed to finalize run: %w", err)
	}

	r.logger.Info("run recorded",
		"run_id", runInfo.RunID,
		"cv_rmse", spec.Scores.CVScore,
		"test_rmse", spec.Scores.HoldoutScore)
	return runInfo, nil
}

func (r *Recorder) record(ctx context.Context, runID string, spec RunSpec) error {
	if err := r.tracker.LogParamsFromMap(ctx, runID, spec.Params); err != nil {
		return fmt.Errorf("failed to log parameters: %w", err)
	}

	if err := r.tracker.LogMetric(ctx, runID, MetricCV, spec.Scores.CVScore, nil, nil); err != nil {
		return err
	}
	if err := r.tracker.LogMetric(ctx, runID, MetricHoldout, spec.Scores.HoldoutScore, nil, nil); err != nil {
		return err
	}
	if len(spec.Scores.TrainCurve) > 0 {
		if err := r.tracker.LogSeries(ctx, runID, MetricTrain, spec.Scores.TrainCurve); err != nil {
			return err
		}
	}

	if len(spec.Features) > 0 {
		if err := r.tracker.SetTag(ctx, runID, TagFeatures, strings.Join(spec.Features, ",")); err != nil {
			return fmt.Errorf("failed to set features tag: %w", err)
		}
	}

	if spec.ModelDir != "" {
		if err := r.tracker.UploadDir(ctx, runID, spec.ModelDir, "model"); err != nil {
			return fmt.Errorf("failed to upload model artifact: %w", err)
		}
	}

	return nil
}
