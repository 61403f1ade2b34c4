package sandbox

import (
	"context"
	"time"
)

// Capture is the raw outcome of one containerized run.
type Capture struct {
	Stdout   string
	Stderr   string
	ExitCode int64
	Duration time.Duration
	TimedOut bool
}

// Combined returns stdout and stderr joined, the form the result
// normalizer inspects for failure signatures.
func (c *Capture) Combined() string {
	if c.Stderr == "" {
		return c.Stdout
	}
	return c.Stdout + "\n" + c.Stderr
}

// RunSpec describes one disposable execution environment.
type RunSpec struct {
	// Name must be unique per submission; it scopes the container so
	// concurrent submissions never collide and cleanup never crosses over.
	Name string
	// Image is the prebuilt execution image.
	Image string
	// Cmd is the container argv.
	Cmd []string
	// StageDir is a host directory bind-mounted read-only at the
	// language mount path.
	StageDir string
	// MemoryBytes caps container memory; swap is capped to the same
	// value so the limit is hard.
	MemoryBytes int64
	// CPUQuota limits CPU time per 100ms period (100000 = one core).
	CPUQuota int64
	// Timeout is the wall-clock deadline for the whole run.
	Timeout time.Duration
}

// Sandbox runs a command inside a constrained, disposable, network-less
// environment and guarantees the environment is gone when Run returns.
type Sandbox interface {
	Run(ctx context.Context, spec RunSpec) (*Capture, error)
	EnsureImage(ctx context.Context, image string) error
}
