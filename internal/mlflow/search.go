package mlflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/mlpipe/mlpipe/internal/models"
)

// ErrNoRuns is returned when a best-run query matches no runs. Callers
// check it with errors.Is and stop before taking any deployment action.
var ErrNoRuns = errors.New("no runs found")

// ExperimentByName resolves an experiment name to its ID.
func (c *Client) ExperimentByName(ctx context.Context, name string) (string, error) {
	resp, err := c.client.Experiments.GetByName(ctx, ml.GetByNameRequest{
		ExperimentName: name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get experiment %s: %w", name, err)
	}

	if resp.Experiment == nil || resp.Experiment.ExperimentId == "" {
		return "", fmt.Errorf("experiment %s has no ID", name)
	}

	return resp.Experiment.ExperimentId, nil
}

// EnsureExperiment resolves the experiment name to its ID, creating
// the experiment when it does not exist yet.
func (c *Client) EnsureExperiment(ctx context.Context, name string) (string, error) {
	id, err := c.ExperimentByName(ctx, name)
	if err == nil {
		return id, nil
	}

	resp, createErr := c.client.Experiments.CreateExperiment(ctx, ml.CreateExperiment{
		Name: name,
	})
	if createErr != nil {
		return "", fmt.Errorf("failed to create experiment %s (lookup: %v): %w", name, err, createErr)
	}

	return resp.ExperimentId, nil
}

// BestRun returns the run with the lowest value of the named metric in
// the given experiment. Ordering is always ascending: metrics recorded
// by this tool are error metrics, lower is better. Ties are resolved by
// whatever order the store returns.
func (c *Client) BestRun(ctx context.Context, experimentName, metric string) (*models.RunInfo, error) {
	if strings.ContainsAny(metric, " '\"`") {
		return nil, fmt.Errorf("invalid metric name: %q", metric)
	}

	experimentID, err := c.ExperimentByName(ctx, experimentName)
	if err != nil {
		return nil, err
	}

	runs, err := c.client.Experiments.SearchRunsAll(ctx, ml.SearchRuns{
		ExperimentIds: []string{experimentID},
		OrderBy:       []string{fmt.Sprintf("metrics.%s ASC", metric)},
		MaxResults:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search runs in experiment %s: %w", experimentName, err)
	}

	if len(runs) == 0 {
		return nil, fmt.Errorf("experiment %s: %w", experimentName, ErrNoRuns)
	}

	return runInfoFromRun(&runs[0]), nil
}
