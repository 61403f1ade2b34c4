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

// ScriptRunner executes JavaScript submissions. The user code is wrapped
// into a generated driver script that runs every test case and prints one
// JSON record per case.
type ScriptRunner struct {
	sandbox  sandbox.Sandbox
	stager   *sandbox.Stager
	registry *languages.Registry
	limits   Limits
	logger   *zerolog.Logger
}

var _ engine.Runner = (*ScriptRunner)(nil)

func NewScriptRunner(sb sandbox.Sandbox, stager *sandbox.Stager, registry *languages.Registry, limits Limits, logger *zerolog.Logger) *ScriptRunner {
	return &ScriptRunner{
		sandbox:  sb,
		stager:   stager,
		registry: registry,
		limits:   limits,
		logger:   logger,
	}
}

func (r *ScriptRunner) Run(ctx context.Context, req *engine.Request) (*engine.SubmissionResult, error) {
	lang, err := r.registry.Get(engine.LangScript)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve script runtime: %w", err)
	}

	driver, err := harness.GenerateScriptDriver(req.Code, req.TestCases, req.Metadata)
	if err != nil {
		return engine.FailAll(req.TestCases, err.Error()), nil
	}

	st, err := r.stager.Create()
	if err != nil {
		return nil, err
	}
	defer st.Remove()

	if _, err := st.Write(lang.Config.SourceFile, []byte(driver)); err != nil {
		return nil, err
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
		r.logger.Error().Err(err).Str("staging_id", st.ID).Msg("script execution environment failed")
		return engine.FailAll(req.TestCases, "execution environment failure: "+err.Error()), nil
	}
	if capture.TimedOut {
		return engine.TimeoutResult(req.TestCases, r.limits.Timeout), nil
	}

	return engine.NormalizeRecords(capture.Combined(), req.TestCases, capture.Duration, false), nil
}
