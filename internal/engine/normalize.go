package engine

import (
	"encoding/json"
	"strings"
	"time"
)

const parseFailureMessage = "failed to parse output: check for syntax errors or infinite loops"

// Record is the single-line result a driver script prints per test case.
// Index maps the record back to its source test case regardless of the
// order the driver ran the cases in.
type Record struct {
	Index  int    `json:"index"`
	Passed bool   `json:"passed"`
	Output any    `json:"output"`
	Error  string `json:"error,omitempty"`
}

// HarnessRecord is one element of the JSON array a compiled harness
// prints. The harness runs cases in order, so position is the index.
type HarnessRecord struct {
	Passed   bool   `json:"passed"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Error    string `json:"error,omitempty"`
}

// failure signatures recognized in raw backend output, checked in order.
var failureSignatures = []struct {
	needle  string
	message string
}{
	{"go: command not found", "Go toolchain is not available in the execution environment"},
	{"executable file not found", "Go toolchain is not available in the execution environment"},
	{"missing return", "compilation failed: missing return statement"},
	{"syntax error", "compilation failed: syntax error in submitted code"},
	{"expected declaration", "compilation failed: syntax error in submitted code"},
	{"cannot find module", "failed to initialize build module"},
	{"go.mod file not found", "failed to initialize build module"},
	{"build failed", "compilation failed: check your code for errors"},
	{"undefined:", "compilation failed: reference to undefined identifier"},
}

// ClassifyFailure inspects raw output for known toolchain and compiler
// failure signatures. It returns a descriptive message and true on a hit.
func ClassifyFailure(raw string) (string, bool) {
	lowered := strings.ToLower(raw)
	for _, sig := range failureSignatures {
		if strings.Contains(lowered, sig.needle) {
			return sig.message, true
		}
	}
	return "", false
}

// FailAll builds a SubmissionResult with one failing entry per test case,
// all carrying the same message. Used for failures that predate any
// per-case output: compile errors, screening rejections, parse failures.
func FailAll(cases []TestCase, msg string) *SubmissionResult {
	results := make([]TestResult, len(cases))
	for i := range cases {
		results[i] = TestResult{Passed: false, Error: msg}
	}
	return Finalize(results, 0)
}

// TimeoutResult builds the uniform report for an execution that hit its
// wall-clock deadline.
func TimeoutResult(cases []TestCase, limit time.Duration) *SubmissionResult {
	res := FailAll(cases, "execution timed out after "+limit.String())
	res.Metrics.TotalTimeMs = limit.Milliseconds()
	return res
}

// Finalize computes aggregate metrics and the overall success flag.
// Zero results is deliberately a failure, not a vacuous success: a
// submission that judged nothing proved nothing, and the only way to
// reach this with no results is a malformed request that slipped past
// API validation. TotalMemoryKb stays zero: no backend measures memory.
func Finalize(results []TestResult, elapsed time.Duration) *SubmissionResult {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return &SubmissionResult{
		Success: passed == len(results) && len(results) > 0,
		Results: results,
		Metrics: Metrics{
			TotalTimeMs:   elapsed.Milliseconds(),
			TotalMemoryKb: 0,
			PassedTests:   passed,
			TotalTests:    len(results),
		},
	}
}

// NormalizeRecords turns raw driver output into a SubmissionResult.
// Each line is expected to hold one JSON record; with scanEmbedded set,
// lines are scanned for an embedded JSON object instead, which tolerates
// interpreter banners and warning noise around the payload (PHP).
// Records map back to test cases by index; cases with no record get a
// synthetic failing entry, and zero parseable records degrades to a
// uniform parse-failure report.
//
// A record that ran without error is re-judged against the test case's
// expected value with Equal, so the verdict is the canonical one
// regardless of which driver's comparison produced the record.
func NormalizeRecords(raw string, cases []TestCase, elapsed time.Duration, scanEmbedded bool) *SubmissionResult {
	if msg, ok := ClassifyFailure(raw); ok {
		return FailAll(cases, msg)
	}

	perCase := int64(0)
	if len(cases) > 0 {
		perCase = elapsed.Milliseconds() / int64(len(cases))
	}

	found := 0
	results := make([]TestResult, len(cases))
	for _, line := range strings.Split(raw, "\n") {
		payload := strings.TrimSpace(line)
		if scanEmbedded {
			payload = extractJSONObject(payload)
		}
		if payload == "" || !strings.HasPrefix(payload, "{") {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			continue
		}
		if rec.Index < 0 || rec.Index >= len(cases) {
			continue
		}
		verdict := rec.Passed
		if rec.Error == "" {
			verdict = Equal(cases[rec.Index].Expected, rec.Output)
		}
		results[rec.Index] = TestResult{
			Passed:          verdict,
			Error:           rec.Error,
			Actual:          rec.Output,
			ExecutionTimeMs: perCase,
		}
		if !verdict && rec.Error == "" {
			results[rec.Index].Error = "expected " + Render(cases[rec.Index].Expected) + ", got " + Render(rec.Output)
		}
		found++
	}

	if found == 0 {
		return FailAll(cases, parseFailureMessage)
	}
	for i := range results {
		if !results[i].Passed && results[i].Error == "" && results[i].Actual == nil {
			results[i].Error = "no result produced for this test case"
		}
	}
	return Finalize(results, elapsed)
}

// NormalizeHarnessOutput parses the JSON array a compiled harness prints.
// Anything before or after the array (build chatter, stray prints from
// user code) is sliced away before decoding. As with NormalizeRecords,
// error-free records are re-judged against the test case's expected
// value with Equal rather than trusting the harness's own comparison.
func NormalizeHarnessOutput(raw string, cases []TestCase, elapsed time.Duration) *SubmissionResult {
	if msg, ok := ClassifyFailure(raw); ok {
		return FailAll(cases, msg)
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return FailAll(cases, parseFailureMessage)
	}

	var records []HarnessRecord
	if err := json.Unmarshal([]byte(raw[start:end+1]), &records); err != nil {
		return FailAll(cases, parseFailureMessage)
	}
	if len(records) == 0 {
		return FailAll(cases, parseFailureMessage)
	}

	perCase := int64(0)
	if len(cases) > 0 {
		perCase = elapsed.Milliseconds() / int64(len(cases))
	}

	results := make([]TestResult, len(cases))
	for i := range cases {
		if i >= len(records) {
			results[i] = TestResult{Passed: false, Error: "no result produced for this test case"}
			continue
		}
		rec := records[i]
		verdict := rec.Passed
		if rec.Error == "" {
			verdict = Equal(cases[i].Expected, rec.Actual)
		}
		results[i] = TestResult{
			Passed:          verdict,
			Error:           rec.Error,
			Actual:          rec.Actual,
			ExecutionTimeMs: perCase,
		}
		if !verdict && rec.Error == "" {
			results[i].Error = "expected " + Render(cases[i].Expected) + ", got " + Render(rec.Actual)
		}
	}
	return Finalize(results, elapsed)
}

// extractJSONObject returns the outermost {...} span in line, or "".
// Brace depth is tracked so trailing noise after the object is dropped.
func extractJSONObject(line string) string {
	start := strings.Index(line, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return line[start : i+1]
				}
			}
		}
	}
	return ""
}
