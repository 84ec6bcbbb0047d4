package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mlpipe/mlpipe/internal/recorder"
)

var bestRunCmd = &cobra.Command{
	Use:   "best-run",
	Short: "Show the best recorded run",
	Long:  "Select the run with the lowest value of the chosen metric and print it without deploying",
	RunE:  runBestRun,
}

func init() {
	rootCmd.AddCommand(bestRunCmd)

	bestRunCmd.Flags().String("metric", recorder.MetricCV, "Selection metric (ascending, lower is better)")
}

func runBestRun(cmd *cobra.Command, args []string) error {
	cfg, client, err := newClient()
	if err != nil {
		return err
	}

	metric, _ := cmd.Flags().GetString("metric")

	ctx := context.Background()
	best, err := client.BestRun(ctx, cfg.Experiment, metric)
	if err != nil {
		return err
	}

	// Fetch the full record so the printed parameters come from the
	// store, not from the search result.
	run, err := client.GetRun(ctx, best.RunID)
	if err != nil {
		return err
	}

	fmt.Printf("Run ID: %s\n", run.RunID)
	if run.RunName != "" {
		fmt.Printf("Name: %s\n", run.RunName)
	}
	fmt.Printf("%s: %.4f\n", metric, run.Metrics[metric])
	fmt.Printf("Artifact URI: %s\n", run.ArtifactURI)

	if len(run.Params) > 0 {
		fmt.Println("Parameters:")
		keys := make([]string, 0, len(run.Params))
		for key := range run.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("  %s: %s\n", key, run.Params[key])
		}
	}

	return nil
}
