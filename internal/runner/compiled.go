package runner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/harness"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/languages"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/metrics"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/sandbox"
)

// Backend names which execution path actually ran a compiled submission.
// It is internal to the runner: callers only see the SubmissionResult.
type Backend string

const (
	BackendNative    Backend = "native"
	BackendContainer Backend = "container"
)

// CompiledRunner executes Go submissions through an explicit
// native-then-container strategy: the host toolchain is attempted only
// when configured and available, and any native-path failure silently
// falls back to the container backend.
type CompiledRunner struct {
	native       *NativeBackend
	preferNative bool
	sandbox      sandbox.Sandbox
	stager       *sandbox.Stager
	registry     *languages.Registry
	limits       Limits
	logger       *zerolog.Logger
}

var _ engine.Runner = (*CompiledRunner)(nil)

func NewCompiledRunner(native *NativeBackend, preferNative bool, sb sandbox.Sandbox, stager *sandbox.Stager, registry *languages.Registry, limits Limits, logger *zerolog.Logger) *CompiledRunner {
	return &CompiledRunner{
		native:       native,
		preferNative: preferNative,
		sandbox:      sb,
		stager:       stager,
		registry:     registry,
		limits:       limits,
		logger:       logger,
	}
}

func (r *CompiledRunner) Run(ctx context.Context, req *engine.Request) (*engine.SubmissionResult, error) {
	res, _, err := r.run(ctx, req)
	return res, err
}

// run reports which backend produced the result so fallback behavior can
// be asserted deterministically.
func (r *CompiledRunner) run(ctx context.Context, req *engine.Request) (*engine.SubmissionResult, Backend, error) {
	if r.preferNative && r.native != nil && r.native.Available(ctx) {
		res, err := r.native.Run(ctx, req)
		if err == nil {
			return res, BackendNative, nil
		}
		metrics.NativeFallbacks.Inc()
		r.logger.Warn().Err(err).Msg("native go backend failed, falling back to container")
	}

	res, err := r.runContainer(ctx, req)
	return res, BackendContainer, err
}

// runContainer stages the user code, serialized test cases and serialized
// metadata as three read-only mounted inputs for the prebuilt image's
// test-runner binary.
func (r *CompiledRunner) runContainer(ctx context.Context, req *engine.Request) (*engine.SubmissionResult, error) {
	lang, err := r.registry.Get(engine.LangCompiled)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve compiled runtime: %w", err)
	}

	tests, err := harness.SerializeTests(req.TestCases)
	if err != nil {
		return engine.FailAll(req.TestCases, err.Error()), nil
	}
	meta, err := json.Marshal(req.Metadata)
	if err != nil {
		return engine.FailAll(req.TestCases, "failed to serialize metadata: "+err.Error()), nil
	}

	st, err := r.stager.Create()
	if err != nil {
		return nil, err
	}
	defer st.Remove()

	staged := map[string][]byte{
		lang.Config.SourceFile: []byte(req.Code),
		"testcases.json":       []byte(tests),
		"metadata.json":        meta,
	}
	for name, content := range staged {
		if _, err := st.Write(name, content); err != nil {
			return nil, err
		}
	}

	capture, err := r.sandbox.Run(ctx, sandbox.RunSpec{
		Name:        st.ID,
		Image:       lang.Config.Image,
		Cmd:         lang.Config.RunCommand,
		StageDir:    st.Dir,
		MemoryBytes: r.limits.MemoryBytes,
		CPUQuota:    r.limits.CPUQuota,
		Timeout:     r.limits.Timeout,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("staging_id", st.ID).Msg("compiled execution environment failed")
		return engine.FailAll(req.TestCases, "execution environment failure: "+err.Error()), nil
	}
	if capture.TimedOut {
		return engine.TimeoutResult(req.TestCases, r.limits.Timeout), nil
	}

	return engine.NormalizeHarnessOutput(capture.Combined(), req.TestCases, capture.Duration), nil
}
