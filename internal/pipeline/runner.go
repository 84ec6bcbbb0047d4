package pipeline

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/hashicorp/go-hclog"

	"github.com/mlpipe/mlpipe/internal/manifest"
)

// LocalRunner resolves entry points against the project manifest and
// executes their rendered commands through the shell, inheriting the
// given output streams. Environment resolution (conda, docker) is the
// manifest environment's concern and is not reproduced here; commands
// run in the current environment.
type LocalRunner struct {
	manifest *manifest.Manifest
	logger   hclog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

func NewLocalRunner(m *manifest.Manifest, logger hclog.Logger, stdout, stderr io.Writer) *LocalRunner {
	return &LocalRunner{
		manifest: m,
		logger:   logger.Named("runner"),
		stdout:   stdout,
		stderr:   stderr,
	}
}

func (r *LocalRunner) Run(ctx context.Context, entryPoint string, params map[string]string) error {
	ep, err := r.manifest.Resolve(entryPoint)
	if err != nil {
		return err
	}

	command, err := ep.RenderCommand(params)
	if err != nil {
		return fmt.Errorf("entry point %s: %w", entryPoint, err)
	}

	r.logger.Debug("executing entry point", "entry_point", entryPoint, "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("entry point %s failed: %w", entryPoint, err)
	}

	return nil
}
