package deploy_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlpipe/mlpipe/internal/deploy"
	"github.com/mlpipe/mlpipe/internal/mlflow"
	"github.com/mlpipe/mlpipe/internal/models"
)

// fakeStore mimics the tracking store's best-run query: ascending sort
// by the metric, top-1, ErrNoRuns on an empty result.
type fakeStore struct {
	runs []*models.RunInfo
}

func (f *fakeStore) BestRun(ctx context.Context, experimentName, metric string) (*models.RunInfo, error) {
	if len(f.runs) == 0 {
		return nil, fmt.Errorf("experiment %s: %w", experimentName, mlflow.ErrNoRuns)
	}
	sorted := make([]*models.RunInfo, len(f.runs))
	copy(sorted, f.runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metrics[metric] < sorted[j].Metrics[metric]
	})
	return sorted[0], nil
}

// fakeExecutor records every command; removeErr simulates an absent
// container.
type fakeExecutor struct {
	commands  [][]string
	removeErr error
	runErr    error
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args ...string) error {
	f.commands = append(f.commands, append([]string{name}, args...))
	return f.removeErr
}

func (f *fakeExecutor) RunForeground(ctx context.Context, name string, args ...string) error {
	f.commands = append(f.commands, append([]string{name}, args...))
	return f.runErr
}

func testOptions() deploy.Options {
	return deploy.Options{
		ContainerName: "mlpipe-serving",
		Image:         "mlpipe/serving:latest",
		Port:          8000,
		Workers:       2,
	}
}

func newDeployment(store *fakeStore, executor *fakeExecutor) *deploy.Deployment {
	launcher := deploy.NewLauncher(executor, hclog.NewNullLogger(), testOptions())
	return deploy.NewDeployment(store, launcher, hclog.NewNullLogger())
}

func seededRuns() []*models.RunInfo {
	return []*models.RunInfo{
		{RunID: "a", ArtifactURI: "/mlruns/1/a/artifacts", Metrics: map[string]float64{"cv_rmse": 0.82}},
		{RunID: "b", ArtifactURI: "/mlruns/1/b/artifacts", Metrics: map[string]float64{"cv_rmse": 0.64}},
		{RunID: "c", ArtifactURI: "/mlruns/1/c/artifacts", Metrics: map[string]float64{"cv_rmse": 0.77}},
	}
}

func TestDeployBestPicksMinimumMetricRun(t *testing.T) {
	executor := &fakeExecutor{}
	d := newDeployment(&fakeStore{runs: seededRuns()}, executor)

	require.NoError(t, d.DeployBest(context.Background(), "wine-quality", "cv_rmse"))

	require.Len(t, executor.commands, 2)
	assert.Equal(t, []string{"docker", "rm", "-f", "mlpipe-serving"}, executor.commands[0])

	serve := strings.Join(executor.commands[1], " ")
	// Run "b" has the lowest cv_rmse.
	assert.Contains(t, serve, "-v /mlruns/1/b/artifacts:/opt/model")
}

func TestDeployBestNoRuns(t *testing.T) {
	executor := &fakeExecutor{}
	d := newDeployment(&fakeStore{}, executor)

	err := d.DeployBest(context.Background(), "wine-quality", "cv_rmse")
	require.Error(t, err)
	assert.ErrorIs(t, err, mlflow.ErrNoRuns)

	// No container action follows a failed selection.
	assert.Empty(t, executor.commands)
}

func TestDeployRemovalFailureIsSwallowed(t *testing.T) {
	executor := &fakeExecutor{removeErr: errors.New("no such container")}
	d := newDeployment(&fakeStore{runs: seededRuns()}, executor)

	// Repeated attempts with the container absent never abort.
	require.NoError(t, d.DeployBest(context.Background(), "wine-quality", "cv_rmse"))
	require.NoError(t, d.DeployBest(context.Background(), "wine-quality", "cv_rmse"))
	assert.Len(t, executor.commands, 4)
}

func TestDeployLaunchFailureIsFatal(t *testing.T) {
	executor := &fakeExecutor{runErr: errors.New("docker daemon not running")}
	d := newDeployment(&fakeStore{runs: seededRuns()}, executor)

	err := d.DeployBest(context.Background(), "wine-quality", "cv_rmse")
	assert.ErrorContains(t, err, "failed to start serving container")
}

func TestServeArgs(t *testing.T) {
	launcher := deploy.NewLauncher(&fakeExecutor{}, hclog.NewNullLogger(), testOptions())

	t.Run("local artifact root is mounted", func(t *testing.T) {
		args := launcher.ServeArgs("file:///mlruns/1/b/artifacts")
		assert.Equal(t, []string{
			"run",
			"--name", "mlpipe-serving",
			"-p", "8000:8000",
			"-i", "--rm",
			"-v", "/mlruns/1/b/artifacts:/opt/model",
			"mlpipe/serving:latest",
			"mlflow", "models", "serve",
			"-m", "/opt/model/model",
			"-h", "0.0.0.0",
			"-p", "8000",
			"-w", "2",
		}, args)
	})

	t.Run("remote artifact root passes tracking URI", func(t *testing.T) {
		opts := testOptions()
		opts.TrackingURI = "http://localhost:5000"
		remote := deploy.NewLauncher(&fakeExecutor{}, hclog.NewNullLogger(), opts)

		args := remote.ServeArgs("mlflow-artifacts:/1/b/artifacts")
		joined := strings.Join(args, " ")
		assert.Contains(t, joined, "-e MLFLOW_TRACKING_URI=http://localhost:5000")
		assert.Contains(t, joined, "-m mlflow-artifacts:/1/b/artifacts/model")
		assert.NotContains(t, joined, "-v ")
	})
}
