package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlpipe/mlpipe/internal/train"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Clean a raw CSV dataset",
	Long:  "Drop rows with missing or non-numeric values so the result loads as a feature matrix",
	RunE:  runPreprocess,
}

func init() {
	rootCmd.AddCommand(preprocessCmd)

	preprocessCmd.Flags().String("in", "data/raw.csv", "Input CSV file")
	preprocessCmd.Flags().String("out", "data/clean.csv", "Output CSV file")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	inPath, _ := cmd.Flags().GetString("in")
	outPath, _ := cmd.Flags().GetString("out")

	kept, dropped, err := train.Preprocess(inPath, outPath)
	if err != nil {
		return err
	}

	logger.Info("dataset cleaned", "in", inPath, "out", outPath, "kept", kept, "dropped", dropped)
	fmt.Printf("Wrote %s: %d rows kept, %d dropped\n", outPath, kept, dropped)

	return nil
}
