package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/harness"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/languages"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/sandbox"
)

// ServerSideRunner executes PHP submissions. The user code is staged
// unmodified; a fixed driver script is copied alongside it and invoked
// with the target function name as a positional argument. Interpreter
// banners and warnings are tolerated: output lines are scanned for
// embedded JSON records rather than assumed to be pure JSON.
type ServerSideRunner struct {
	sandbox  sandbox.Sandbox
	stager   *sandbox.Stager
	registry *languages.Registry
	limits   Limits
	logger   *zerolog.Logger
}

var _ engine.Runner = (*ServerSideRunner)(nil)

func NewServerSideRunner(sb sandbox.Sandbox, stager *sandbox.Stager, registry *languages.Registry, limits Limits, logger *zerolog.Logger) *ServerSideRunner {
	return &ServerSideRunner{
		sandbox:  sb,
		stager:   stager,
		registry: registry,
		limits:   limits,
		logger:   logger,
	}
}

func (r *ServerSideRunner) Run(ctx context.Context, req *engine.Request) (*engine.SubmissionResult, error) {
	lang, err := r.registry.Get(engine.LangServerSide)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve server-side runtime: %w", err)
	}
	if req.Metadata.FunctionName == "" {
		return engine.FailAll(req.TestCases, "failed to generate driver: function name is empty"), nil
	}

	tests, err := harness.SerializeTests(req.TestCases)
	if err != nil {
		return engine.FailAll(req.TestCases, err.Error()), nil
	}

	st, err := r.stager.Create()
	if err != nil {
		return nil, err
	}
	defer st.Remove()

	staged := map[string]string{
		lang.Config.SourceFile: req.Code,
		lang.Config.DriverFile: harness.PHPDriver,
		"testcases.json":       tests,
	}
	for name, content := range staged {
		if _, err := st.Write(name, []byte(content)); err != nil {
			return nil, err
		}
	}

	cmd := append(append([]string{}, lang.Config.RunCommand...), req.Metadata.FunctionName)
	capture, err := r.sandbox.Run(ctx, sandbox.RunSpec{
		Name:        st.ID,
		Image:       lang.Config.Image,
		Cmd:         cmd,
		StageDir:    st.Dir,
		MemoryBytes: r.limits.MemoryBytes,
		CPUQuota:    r.limits.CPUQuota,
		Timeout:     r.limits.Timeout,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("staging_id", st.ID).Msg("server-side execution environment failed")
		return engine.FailAll(req.TestCases, "execution environment failure: "+err.Error()), nil
	}
	if capture.TimedOut {
		return engine.TimeoutResult(req.TestCases, r.limits.Timeout), nil
	}

	return engine.NormalizeRecords(capture.Combined(), req.TestCases, capture.Duration, true), nil
}
