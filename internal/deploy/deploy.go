package deploy

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/mlpipe/mlpipe/internal/models"
)

// RunFinder selects the best run of an experiment by a metric,
// ascending. The tracking client implements it.
type RunFinder interface {
	BestRun(ctx context.Context, experimentName, metric string) (*models.RunInfo, error)
}

// Deployment wires best-run selection to the container launcher. The
// selection is recomputed on every invocation; nothing is cached.
type Deployment struct {
	finder   RunFinder
	launcher *Launcher
	logger   hclog.Logger
}

func NewDeployment(finder RunFinder, launcher *Launcher, logger hclog.Logger) *Deployment {
	return &Deployment{
		finder:   finder,
		launcher: launcher,
		logger:   logger.Named("deploy"),
	}
}

// DeployBest finds the lowest-metric run of the experiment and serves
// its model. A selection failure, including no runs found, stops the
// procedure before any container action.
func (d *Deployment) DeployBest(ctx context.Context, experimentName, metric string) error {
	run, err := d.finder.BestRun(ctx, experimentName, metric)
	if err != nil {
		return err
	}

	if run.ArtifactURI == "" {
		return fmt.Errorf("run %s has no artifact location", run.RunID)
	}

	d.logger.Info("selected best run",
		"run_id", run.RunID,
		"metric", metric,
		"value", run.Metrics[metric],
		"artifact_uri", run.ArtifactURI)

	return d.launcher.Deploy(ctx, run.ArtifactURI)
}
