package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/metrics"
)

// Dispatcher routes a submission to the runner registered for its
// language. It holds no business logic beyond selection: normal failures
// come back inside the SubmissionResult, and only setup-phase problems
// (unknown language, a runner that cannot stage at all) surface as errors.
type Dispatcher struct {
	runners  map[Language]Runner
	screener Screener
	logger   *zerolog.Logger
}

func NewDispatcher(logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		runners: make(map[Language]Runner),
		logger:  logger,
	}
}

// Register binds a runner to a language. Later registrations win.
func (d *Dispatcher) Register(lang Language, r Runner) {
	d.runners[lang] = r
}

// SetScreener installs an optional pre-execution code screener.
func (d *Dispatcher) SetScreener(s Screener) {
	d.screener = s
}

// Execute runs one submission end to end and reports one result per
// test case, always in test-case order.
func (d *Dispatcher) Execute(ctx context.Context, req *Request) (*SubmissionResult, error) {
	runner, ok := d.runners[req.Language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, req.Language)
	}

	if d.screener != nil {
		if err := d.screener.Screen(req.Code, req.Language); err != nil {
			d.logger.Warn().Str("language", string(req.Language)).Err(err).Msg("submission rejected by screener")
			metrics.ExecutionsTotal.WithLabelValues(string(req.Language), "rejected").Inc()
			return FailAll(req.TestCases, err.Error()), nil
		}
	}

	start := time.Now()
	res, err := runner.Run(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues(string(req.Language), "error").Inc()
		return nil, fmt.Errorf("failed to execute %s submission: %w", req.Language, err)
	}

	status := "failed"
	if res.Success {
		status = "passed"
	}
	metrics.ExecutionsTotal.WithLabelValues(string(req.Language), status).Inc()
	metrics.ExecutionDuration.WithLabelValues(string(req.Language)).Observe(float64(elapsed.Milliseconds()))

	d.logger.Info().
		Str("language", string(req.Language)).
		Bool("success", res.Success).
		Int("passed", res.Metrics.PassedTests).
		Int("total", res.Metrics.TotalTests).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("submission executed")

	return res, nil
}
