package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/mlpipe/mlpipe/internal/models"
)

// Tracker is the slice of the tracking client the driver needs for the
// outer workflow run.
type Tracker interface {
	CreateRun(ctx context.Context, config *models.RunConfig) (*models.RunInfo, error)
	UpdateRun(ctx context.Context, runID string, status models.RunStatus) error
	SetTag(ctx context.Context, runID, key, value string) error
}

// StepRunner triggers one named entry point with parameter values and
// blocks until it completes.
type StepRunner interface {
	Run(ctx context.Context, entryPoint string, params map[string]string) error
}

// Step is one workflow stage: the entry point to trigger and the
// parameter values passed to it.
type Step struct {
	EntryPoint string
	Params     map[string]string
}

// workflowSteps is the fixed sequence: pre-processing with no
// parameters, then training with the example hyperparameters.
var workflowSteps = []Step{
	{EntryPoint: "preprocess"},
	{EntryPoint: "train", Params: map[string]string{
		"learning_rate": "0.1",
		"max_depth":     "5",
	}},
}

type Driver struct {
	tracker      Tracker
	runner       StepRunner
	logger       hclog.Logger
	experimentID string
}

func New(tracker Tracker, runner StepRunner, logger hclog.Logger, experimentID string) *Driver {
	return &Driver{
		tracker:      tracker,
		runner:       runner,
		logger:       logger.Named("pipeline"),
		experimentID: experimentID,
	}
}

// RunWorkflow opens the outer run tagged data-pipeline, then triggers
// each step in order. Steps run sequentially and their results are
// deliberately discarded for sequencing: a failed step never stops the
// following ones and nothing is retried or rolled back. The first step
// error is kept only to surface a non-zero exit at the very end, after
// the outer run is finalized.
func (d *Driver) RunWorkflow(ctx context.Context) error {
	pipelineID := uuid.NewString()
	runName := "data-pipeline"

	outer, err := d.tracker.CreateRun(ctx, &models.RunConfig{
		ExperimentID: &d.experimentID,
		RunName:      &runName,
		Tags: map[string]string{
			"workflow":    "data-pipeline",
			"pipeline_id": pipelineID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start workflow run: %w", err)
	}
	d.logger.Info("workflow started", "run_id", outer.RunID, "pipeline_id", pipelineID)

	var firstErr error
	for _, step := range workflowSteps {
		d.logger.Info("triggering step", "entry_point", step.EntryPoint, "params", step.Params)

		// Fire-and-forget: the step's outcome is discarded here, not
		// inspected to alter the sequence.
		stepErr := d.runner.Run(ctx, step.EntryPoint, step.Params)
		if stepErr != nil {
			d.logger.Error("step failed", "entry_point", step.EntryPoint, "error", stepErr)
			if firstErr == nil {
				firstErr = fmt.Errorf("step %s: %w", step.EntryPoint, stepErr)
			}
		}
	}

	status := models.RunStatusFinished
	if firstErr != nil {
		status = models.RunStatusFailed
	}
	if err := d.tracker.UpdateRun(ctx, outer.RunID, status); err != nil {
		return fmt.Errorf("failed to finalize workflow run: %w", err)
	}

	d.logger.Info("workflow finished", "run_id", outer.RunID, "status", status)
	return firstErr
}
