package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlpipe/mlpipe/internal/manifest"
	"github.com/mlpipe/mlpipe/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run project workflows",
	Long:  "Trigger entry points declared in the project manifest",
}

var runWorkflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run the data pipeline workflow",
	Long: `Run the full data pipeline: an outer run tagged data-pipeline, the
preprocess entry point, then the train entry point with the example
hyperparameters. Step outcomes are not inspected between steps.`,
	RunE: runWorkflow,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.AddCommand(runWorkflowCmd)

	runWorkflowCmd.Flags().String("manifest", "", "Project manifest path (default mlproject.yaml)")
	viper.BindPFlag("manifest", runWorkflowCmd.Flags().Lookup("manifest"))
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg, client, err := newClient()
	if err != nil {
		return err
	}

	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	experimentID, err := client.EnsureExperiment(ctx, cfg.Experiment)
	if err != nil {
		return err
	}

	runner := pipeline.NewLocalRunner(m, logger, os.Stdout, os.Stderr)
	driver := pipeline.New(client, runner, logger, experimentID)

	if err := driver.RunWorkflow(ctx); err != nil {
		// Single top-level catch: full detail to the log file, a short
		// notice to the user.
		logger.Error("workflow failed", "error", err)
		fmt.Fprintf(os.Stderr, "Workflow failed. See %s for details.\n", cfg.LogFile)
		return err
	}

	fmt.Println("Workflow finished")
	return nil
}
