package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/harness"
)

const probeTimeout = 2 * time.Second

var errToolchainUnavailable = errors.New("go toolchain unavailable")

// NativeBackend runs Go submissions with the host toolchain, skipping
// container startup cost. Each invocation gets its own scratch directory
// with directory-scoped GOCACHE/GOMODCACHE/GOPATH, so concurrent
// submissions never contend on a shared compiler cache.
//
// An error return means the backend could not run the submission at all
// (missing toolchain, scratch failure, process spawn failure) and the
// caller should fall back to the container backend. Compiler output from
// a submission that did run is classified into a SubmissionResult.
type NativeBackend struct {
	goBinary string
	timeout  time.Duration
	logger   *zerolog.Logger
}

func NewNativeBackend(goBinary string, timeout time.Duration, logger *zerolog.Logger) *NativeBackend {
	if goBinary == "" {
		goBinary = "go"
	}
	return &NativeBackend{goBinary: goBinary, timeout: timeout, logger: logger}
}

// Available probes the toolchain with a short-lived `go version` call.
func (b *NativeBackend) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := exec.CommandContext(probeCtx, b.goBinary, "version").Run(); err != nil {
		b.logger.Debug().Err(err).Msg("go toolchain probe failed")
		return false
	}
	return true
}

func (b *NativeBackend) Run(ctx context.Context, req *engine.Request) (*engine.SubmissionResult, error) {
	program, err := harness.Generate(req.Code, req.TestCases, req.Metadata)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "codequest-go-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := os.WriteFile(filepath.Join(scratch, "main.go"), []byte(program), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write harness: %w", err)
	}

	// The overall budget is split so a slow module init cannot starve
	// the build/run phase.
	initBudget := b.timeout / 4
	runBudget := b.timeout - initBudget
	env := b.isolatedEnv(scratch)

	out, timedOut, err := b.step(ctx, initBudget, scratch, env, "mod", "init", "codequest/submission")
	if err != nil {
		return nil, err
	}
	if timedOut {
		return engine.TimeoutResult(req.TestCases, b.timeout), nil
	}
	if out.exitCode != 0 {
		if msg, ok := engine.ClassifyFailure(out.combined); ok {
			return engine.FailAll(req.TestCases, msg), nil
		}
		return engine.FailAll(req.TestCases, "failed to initialize build module: "+tail(out.combined)), nil
	}

	start := time.Now()
	out, timedOut, err = b.step(ctx, runBudget, scratch, env, "run", ".")
	if err != nil {
		return nil, err
	}
	if timedOut {
		return engine.TimeoutResult(req.TestCases, b.timeout), nil
	}
	if out.exitCode != 0 {
		if msg, ok := engine.ClassifyFailure(out.combined); ok {
			return engine.FailAll(req.TestCases, msg), nil
		}
		return engine.FailAll(req.TestCases, "build or run failed: "+tail(out.combined)), nil
	}

	return engine.NormalizeHarnessOutput(out.combined, req.TestCases, time.Since(start)), nil
}

// isolatedEnv redirects every toolchain cache into the scratch directory.
func (b *NativeBackend) isolatedEnv(scratch string) []string {
	return append(os.Environ(),
		"GOCACHE="+filepath.Join(scratch, ".gocache"),
		"GOMODCACHE="+filepath.Join(scratch, ".gomodcache"),
		"GOPATH="+filepath.Join(scratch, ".gopath"),
		"GOFLAGS=-mod=mod",
		"GO111MODULE=on",
	)
}

type stepOutput struct {
	combined string
	exitCode int
}

// step runs one toolchain subprocess with its own slice of the deadline.
// The spawn error is separated from a non-zero exit: the former aborts
// the backend, the latter carries compiler output worth classifying.
func (b *NativeBackend) step(ctx context.Context, budget time.Duration, dir string, env []string, args ...string) (stepOutput, bool, error) {
	stepCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	cmd := exec.CommandContext(stepCtx, b.goBinary, args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.WaitDelay = time.Second // hard kill if the process ignores cancellation

	out, err := cmd.CombinedOutput()
	if stepCtx.Err() == context.DeadlineExceeded {
		return stepOutput{}, true, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stepOutput{combined: string(out), exitCode: exitErr.ExitCode()}, false, nil
		}
		return stepOutput{}, false, fmt.Errorf("%w: failed to run %s %s: %v", errToolchainUnavailable, b.goBinary, strings.Join(args, " "), err)
	}
	return stepOutput{combined: string(out), exitCode: 0}, false, nil
}

// tail keeps error messages readable when the compiler is chatty.
func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 500
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
