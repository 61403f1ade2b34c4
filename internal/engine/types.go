package engine

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownLanguage = errors.New("unknown language")
)

// Language is the closed set of execution targets the engine supports.
type Language string

const (
	// LangScript runs JavaScript submissions under Node.
	LangScript Language = "script"
	// LangCompiled runs Go submissions, natively when the host toolchain
	// is available and inside a container otherwise.
	LangCompiled Language = "compiled"
	// LangServerSide runs PHP submissions through the CLI interpreter.
	LangServerSide Language = "server-side"
)

func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangScript, LangCompiled, LangServerSide:
		return Language(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// TestCase is one input/expected-output pair used to judge a submission.
// Owned by the caller; the engine never mutates it.
type TestCase struct {
	Input       []any  `json:"input"`
	Expected    any    `json:"expected"`
	Description string `json:"description,omitempty"`
}

// FunctionMetadata describes the single entry point the harness must call.
type FunctionMetadata struct {
	FunctionName   string   `json:"functionName"`
	ParameterTypes []string `json:"parameterTypes"`
	ReturnType     string   `json:"returnType"`
}

// Request is one submission to execute. Created once, never mutated,
// scoped to a single Execute call.
type Request struct {
	Code      string           `json:"code"`
	Language  Language         `json:"language"`
	TestCases []TestCase       `json:"testCases"`
	Metadata  FunctionMetadata `json:"metadata"`
}

// TestResult is the outcome of one test case.
type TestResult struct {
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
	Actual any    `json:"actual,omitempty"`
	// ExecutionTimeMs is wall-clock time attributed to this case.
	ExecutionTimeMs int64 `json:"executionTimeMs"`
	// MemoryUsedKb is an unmeasured placeholder and is always zero.
	MemoryUsedKb int64 `json:"memoryUsedKb"`
}

// Metrics aggregates a submission's results.
type Metrics struct {
	TotalTimeMs   int64 `json:"totalTimeMs"`
	TotalMemoryKb int64 `json:"totalMemoryKb"`
	PassedTests   int   `json:"passedTests"`
	TotalTests    int   `json:"totalTests"`
}

// SubmissionResult is the uniform report returned for every submission.
// Results always has exactly one entry per test case, in test-case order.
type SubmissionResult struct {
	Success bool         `json:"success"`
	Results []TestResult `json:"results"`
	Metrics Metrics      `json:"metrics"`
}

// Runner executes one submission for a single language variant.
// Normal failures (compile errors, timeouts, bad output) are reported
// through the SubmissionResult; the error return is reserved for setup
// failures that precede any test execution.
type Runner interface {
	Run(ctx context.Context, req *Request) (*SubmissionResult, error)
}

// Screener optionally rejects a submission before it reaches a sandbox.
type Screener interface {
	Screen(code string, lang Language) error
}
