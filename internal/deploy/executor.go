package deploy

import (
	"context"
	"os"
	"os/exec"
)

// Executor runs external commands. Run is for short housekeeping
// commands whose output is discarded; RunForeground attaches the
// process to the caller's terminal and blocks until it exits.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) error
	RunForeground(ctx context.Context, name string, args ...string) error
}

// DockerExecutor executes commands on the local host.
type DockerExecutor struct{}

func (DockerExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (DockerExecutor) RunForeground(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
