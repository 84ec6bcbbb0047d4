package deploy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Options fix the shape of the serving container. The container name
// is stable across deployments: a prior instance is force-removed
// before a new one starts, last writer wins.
type Options struct {
	ContainerName string
	Image         string
	Port          int
	Workers       int
	TrackingURI   string
}

// Launcher starts the containerized scoring server for a chosen model.
type Launcher struct {
	exec   Executor
	logger hclog.Logger
	opts   Options
}

func NewLauncher(executor Executor, logger hclog.Logger, opts Options) *Launcher {
	return &Launcher{
		exec:   executor,
		logger: logger.Named("deploy"),
		opts:   opts,
	}
}

// Deploy force-removes any container holding the fixed name, then runs
// the serving container in the foreground, blocking for the lifetime
// of the server. Removal failure is swallowed: the container may
// legitimately not exist. A failure of the run command itself is
// fatal; errors inside the running server are invisible here.
func (l *Launcher) Deploy(ctx context.Context, artifactRoot string) error {
	if err := l.exec.Run(ctx, "docker", "rm", "-f", l.opts.ContainerName); err != nil {
		l.logger.Debug("no existing container removed", "container", l.opts.ContainerName, "error", err)
	}

	args := l.ServeArgs(artifactRoot)
	l.logger.Info("starting serving container",
		"container", l.opts.ContainerName,
		"port", l.opts.Port,
		"model", artifactRoot)

	if err := l.exec.RunForeground(ctx, "docker", args...); err != nil {
		return fmt.Errorf("failed to start serving container: %w", err)
	}
	return nil
}

// ServeArgs assembles the docker run argv for the given artifact root:
// name, volume, port, interactive and remove-on-exit flags, then the
// serving sub-command with model URI, all-interfaces host, port and
// worker count. Local artifact roots are bind-mounted into the
// container; remote ones are resolved by the server via the tracking
// URI.
func (l *Launcher) ServeArgs(artifactRoot string) []string {
	port := strconv.Itoa(l.opts.Port)
	args := []string{
		"run",
		"--name", l.opts.ContainerName,
		"-p", port + ":" + port,
		"-i", "--rm",
	}

	modelURI := strings.TrimSuffix(artifactRoot, "/") + "/model"
	if local, ok := localArtifactPath(artifactRoot); ok {
		args = append(args, "-v", local+":/opt/model")
		modelURI = "/opt/model/model"
	} else if l.opts.TrackingURI != "" {
		args = append(args, "-e", "MLFLOW_TRACKING_URI="+l.opts.TrackingURI)
	}

	args = append(args, l.opts.Image,
		"mlflow", "models", "serve",
		"-m", modelURI,
		"-h", "0.0.0.0",
		"-p", port,
		"-w", strconv.Itoa(l.opts.Workers),
	)
	return args
}

func localArtifactPath(artifactRoot string) (string, bool) {
	if strings.HasPrefix(artifactRoot, "file://") {
		return strings.TrimPrefix(artifactRoot, "file://"), true
	}
	if strings.HasPrefix(artifactRoot, "/") {
		return artifactRoot, true
	}
	return "", false
}
