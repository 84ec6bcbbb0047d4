package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// Options is the process-wide logging configuration, resolved once at
// startup. The returned logger is passed explicitly into every
// component; there is no package-level ambient logger.
type Options struct {
	Name    string
	Level   string
	LogFile string
}

// Setup opens the log file in append mode and builds the root logger.
// Call it once before constructing any component; components take
// sub-loggers via Named so every line carries the component name.
func Setup(opts Options) (hclog.Logger, error) {
	if opts.Name == "" {
		opts.Name = "mlpipe"
	}
	if opts.Level == "" {
		opts.Level = "INFO"
	}

	loggerOpts := &hclog.LoggerOptions{
		Name:  opts.Name,
		Level: hclog.LevelFromString(opts.Level),
	}

	if opts.LogFile != "" {
		if dir := filepath.Dir(opts.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		logFile, err := os.OpenFile(opts.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.LogFile, err)
		}
		loggerOpts.Output = logFile
	}

	return hclog.New(loggerOpts), nil
}
