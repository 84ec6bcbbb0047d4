package cmd

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlpipe/mlpipe/internal/config"
	"github.com/mlpipe/mlpipe/internal/logging"
	"github.com/mlpipe/mlpipe/internal/mlflow"
)

var rootCmd = &cobra.Command{
	Use:   "mlpipe",
	Short: "Training workflow CLI for MLflow tracking",
	Long: `A command line tool that drives a small training workflow against an
MLflow-compatible tracking server: run the data pipeline, record training
runs with parameters, metrics and model artifacts, and deploy the best
recorded model as a containerized scoring service.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// logger is the process root logger, built once in setup before any
// command body runs and handed down to every component.
var logger hclog.Logger

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("tracking-uri", "", "MLflow tracking URI (overrides MLFLOW_TRACKING_URI)")
	rootCmd.PersistentFlags().String("experiment", "", "Experiment name (overrides MLFLOW_EXPERIMENT)")
	rootCmd.PersistentFlags().String("log-file", "", "Append-mode log file (overrides MLFLOW_LOG_FILE)")
	viper.BindPFlag("tracking_uri", rootCmd.PersistentFlags().Lookup("tracking-uri"))
	viper.BindPFlag("experiment", rootCmd.PersistentFlags().Lookup("experiment"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	// Environment variables
	viper.SetEnvPrefix("MLFLOW")
	viper.AutomaticEnv()

	// Also bind Databricks environment variables
	viper.BindEnv("databricks_host", "DATABRICKS_HOST")
	viper.BindEnv("databricks_token", "DATABRICKS_TOKEN")

	// Set defaults
	viper.SetDefault("tracking_uri", "http://localhost:5000")
	viper.SetDefault("experiment", "wine-quality")
	viper.SetDefault("manifest", "mlproject.yaml")
	viper.SetDefault("log_file", "mlpipe.log")
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("serve_port", 8000)
	viper.SetDefault("serve_workers", 2)
	viper.SetDefault("container_name", "mlpipe-serving")
	viper.SetDefault("container_image", "mlpipe/serving:latest")
}

// setup configures logging exactly once for the process, before the
// first command body runs.
func setup(cmd *cobra.Command, args []string) error {
	if logger != nil {
		return nil
	}

	var err error
	logger, err = logging.Setup(logging.Options{
		Name:    "mlpipe",
		Level:   viper.GetString("log_level"),
		LogFile: viper.GetString("log_file"),
	})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	return nil
}

// newClient builds the tracking client from the resolved configuration.
func newClient() (*config.Config, *mlflow.Client, error) {
	cfg := config.New()
	client, err := mlflow.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create MLflow client: %w", err)
	}
	return cfg, client, nil
}
