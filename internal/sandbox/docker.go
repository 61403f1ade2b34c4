package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/languages"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/metrics"
)

// stopGrace is how long a container gets to exit on its own before it
// is killed during cleanup.
const stopGrace = 2

type DockerSandbox struct {
	cli    *client.Client
	logger *zerolog.Logger
}

var _ Sandbox = (*DockerSandbox)(nil)

func NewDockerSandbox(logger *zerolog.Logger) (*DockerSandbox, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &DockerSandbox{cli: cli, logger: logger}, nil
}

// Run creates, starts, awaits and tears down one container. The wait is
// raced against the spec deadline; on expiry the container is stopped and
// the capture is marked TimedOut. The container is created without
// auto-removal so its logs can always be read before teardown, and the
// deferred cleanup stops then force-removes it on every exit path.
func (s *DockerSandbox) Run(ctx context.Context, spec RunSpec) (*Capture, error) {
	// Security: cap PIDs to stop fork bombs, drop all capabilities,
	// no network, read-only rootfs, read-only staging mount.
	pidsLimit := int64(64)

	created := time.Now()
	resp, err := s.cli.ContainerCreate(ctx, &container.Config{
		Image:           spec.Image,
		Cmd:             spec.Cmd,
		Tty:             false,
		NetworkDisabled: true,
		WorkingDir:      languages.MountPath,
		User:            "nobody",
	}, &container.HostConfig{
		Binds: []string{spec.StageDir + ":" + languages.MountPath + ":ro"},
		Resources: container.Resources{
			Memory:     spec.MemoryBytes,
			MemorySwap: spec.MemoryBytes, // no swap allowed
			CPUQuota:   spec.CPUQuota,
			PidsLimit:  &pidsLimit,
		},
		NetworkMode:    "none",
		ReadonlyRootfs: true,
		SecurityOpt:    []string{"no-new-privileges"},
		CapDrop:        []string{"ALL"},
		Tmpfs: map[string]string{
			"/tmp": "rw,noexec,nosuid,size=16m,mode=1777",
		},
	}, nil, nil, "codequest-exec-"+spec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	defer func() {
		// Cleanup must not inherit a cancelled request context.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grace := stopGrace
		_ = s.cli.ContainerStop(cleanupCtx, resp.ID, container.StopOptions{Timeout: &grace})
		if err := s.cli.ContainerRemove(cleanupCtx, resp.ID, container.RemoveOptions{Force: true}); err != nil {
			s.logger.Warn().Str("container", resp.ID).Err(err).Msg("failed to remove container")
		}
	}()

	if err := s.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}
	metrics.ContainerCreationTime.Observe(float64(time.Since(created).Milliseconds()))

	runCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	start := time.Now()
	capture := &Capture{}

	waitCh, errCh := s.cli.ContainerWait(runCtx, resp.ID, container.WaitConditionNotRunning)
	select {
	case wait := <-waitCh:
		capture.ExitCode = wait.StatusCode
	case err := <-errCh:
		if runCtx.Err() != nil {
			capture.TimedOut = true
		} else if err != nil {
			return nil, fmt.Errorf("failed to await container: %w", err)
		}
	case <-runCtx.Done():
		capture.TimedOut = true
	}
	capture.Duration = time.Since(start)

	if capture.TimedOut {
		s.logger.Warn().
			Str("container", resp.ID).
			Dur("timeout", spec.Timeout).
			Msg("execution deadline hit, stopping container")
		grace := stopGrace
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = s.cli.ContainerStop(stopCtx, resp.ID, container.StopOptions{Timeout: &grace})
	}

	stdout, stderr, err := s.collectOutput(resp.ID)
	if err != nil {
		if capture.TimedOut {
			return capture, nil
		}
		return nil, err
	}
	capture.Stdout = stdout
	capture.Stderr = stderr
	return capture, nil
}

// collectOutput reads the container's full log stream after it has
// stopped. The stream is pull-based with an explicit end, so there is no
// race between reading logs and removing the container.
func (s *DockerSandbox) collectOutput(containerID string) (string, string, error) {
	logCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reader, err := s.cli.ContainerLogs(logCtx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to read container logs: %w", err)
	}
	defer reader.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, reader); err != nil {
		return "", "", fmt.Errorf("failed to demux container logs: %w", err)
	}
	return stdout.String(), stderr.String(), nil
}

func (s *DockerSandbox) EnsureImage(ctx context.Context, img string) error {
	_, _, err := s.cli.ImageInspectWithRaw(ctx, img)
	if err == nil {
		return nil // Image already exists
	}

	s.logger.Info().Str("image", img).Msg("pulling docker image")
	reader, err := s.cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", img, err)
	}
	defer reader.Close()

	// Important: must consume the reader to finish the pull
	_, _ = io.Copy(io.Discard, reader)

	s.logger.Info().Str("image", img).Msg("successfully pulled docker image")
	return nil
}
