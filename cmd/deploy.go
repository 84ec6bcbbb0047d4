package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlpipe/mlpipe/internal/deploy"
	"github.com/mlpipe/mlpipe/internal/mlflow"
	"github.com/mlpipe/mlpipe/internal/recorder"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the best recorded model",
	Long: `Select the run with the lowest value of the chosen metric and serve its
model in a container on a fixed port. Any prior container with the same
name is force-removed first; the command then blocks for the lifetime of
the server.`,
	Example: `  # Deploy the best run by cross-validated RMSE
  mlpipe deploy

  # Deploy by held-out RMSE, print the command without running it
  mlpipe deploy --metric test_rmse --dry-run`,
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().String("metric", recorder.MetricCV, "Selection metric (ascending, lower is better)")
	deployCmd.Flags().Bool("dry-run", false, "Print the container command instead of running it")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, client, err := newClient()
	if err != nil {
		return err
	}

	metric, _ := cmd.Flags().GetString("metric")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	launcher := deploy.NewLauncher(deploy.DockerExecutor{}, logger, deploy.Options{
		ContainerName: cfg.ContainerName,
		Image:         cfg.ContainerImage,
		Port:          cfg.ServePort,
		Workers:       cfg.ServeWorkers,
		TrackingURI:   cfg.TrackingURI,
	})

	ctx := context.Background()

	if dryRun {
		run, err := client.BestRun(ctx, cfg.Experiment, metric)
		if err != nil {
			return err
		}
		fmt.Printf("Best run: %s (%s=%.4f)\n", run.RunID, metric, run.Metrics[metric])
		fmt.Printf("docker %s\n", strings.Join(launcher.ServeArgs(run.ArtifactURI), " "))
		return nil
	}

	deployment := deploy.NewDeployment(client, launcher, logger)
	if err := deployment.DeployBest(ctx, cfg.Experiment, metric); err != nil {
		if errors.Is(err, mlflow.ErrNoRuns) {
			return fmt.Errorf("no runs found in experiment %s; run the workflow first", cfg.Experiment)
		}
		logger.Error("deployment failed", "error", err)
		fmt.Fprintf(os.Stderr, "Deployment failed. See %s for details.\n", cfg.LogFile)
		return err
	}

	return nil
}
