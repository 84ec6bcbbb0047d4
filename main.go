package main

import (
	"os"

	"github.com/mlpipe/mlpipe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
