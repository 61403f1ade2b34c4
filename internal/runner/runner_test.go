package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/languages"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/sandbox"
)

// fakeSandbox records the spec it was called with, snapshots the staged
// files while the staging directory still exists, and serves a canned
// capture.
type fakeSandbox struct {
	capture *sandbox.Capture
	err     error
	spec    sandbox.RunSpec
	staged  map[string]string
}

func (f *fakeSandbox) Run(ctx context.Context, spec sandbox.RunSpec) (*sandbox.Capture, error) {
	f.spec = spec
	f.staged = map[string]string{}
	entries, _ := os.ReadDir(spec.StageDir)
	for _, e := range entries {
		content, _ := os.ReadFile(filepath.Join(spec.StageDir, e.Name()))
		f.staged[e.Name()] = string(content)
	}
	return f.capture, f.err
}

func (f *fakeSandbox) EnsureImage(ctx context.Context, image string) error { return nil }

func testLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

func testLimits() Limits {
	return Limits{Timeout: 5 * time.Second, MemoryBytes: 128 << 20, CPUQuota: 50000}
}

func testStager(t *testing.T) *sandbox.Stager {
	t.Helper()
	st, err := sandbox.NewStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func scriptRequest() *engine.Request {
	return &engine.Request{
		Code:     "function double(n) { return n * 2; }",
		Language: engine.LangScript,
		TestCases: []engine.TestCase{
			{Input: []any{5.0}, Expected: 10.0},
			{Input: []any{3.0}, Expected: 6.0},
		},
		Metadata: engine.FunctionMetadata{FunctionName: "double", ParameterTypes: []string{"int"}, ReturnType: "int"},
	}
}

func TestScriptRunnerHappyPath(t *testing.T) {
	fake := &fakeSandbox{capture: &sandbox.Capture{
		Stdout: `{"index":0,"passed":true,"output":10}` + "\n" + `{"index":1,"passed":true,"output":6}`,
	}}
	r := NewScriptRunner(fake, testStager(t), languages.NewRegistry(), testLimits(), testLogger())

	res, err := r.Run(context.Background(), scriptRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success || len(res.Results) != 2 {
		t.Fatalf("result = %+v", res)
	}

	driver, ok := fake.staged["solution.js"]
	if !ok {
		t.Fatal("driver script was not staged")
	}
	if !strings.Contains(driver, "function double(n)") {
		t.Error("user code missing from staged driver")
	}

	// Cleanup guarantee: the staging directory is gone after the call.
	if _, statErr := os.Stat(fake.spec.StageDir); !os.IsNotExist(statErr) {
		t.Error("staging directory survived the execution")
	}
}

func TestScriptRunnerTimeout(t *testing.T) {
	fake := &fakeSandbox{capture: &sandbox.Capture{TimedOut: true}}
	r := NewScriptRunner(fake, testStager(t), languages.NewRegistry(), testLimits(), testLogger())

	res, err := r.Run(context.Background(), scriptRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success {
		t.Fatal("timeout must fail the submission")
	}
	if len(res.Results) != 2 {
		t.Fatalf("got %d results, want one per test case", len(res.Results))
	}
	for _, tr := range res.Results {
		if !strings.Contains(tr.Error, "timed out") {
			t.Errorf("error = %q, want timeout mention", tr.Error)
		}
	}
}

func TestScriptRunnerEnvironmentFailure(t *testing.T) {
	fake := &fakeSandbox{err: errors.New("daemon unreachable")}
	r := NewScriptRunner(fake, testStager(t), languages.NewRegistry(), testLimits(), testLogger())

	res, err := r.Run(context.Background(), scriptRequest())
	if err != nil {
		t.Fatalf("environment failures must not escape the runner: %v", err)
	}
	if res.Success || len(res.Results) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Results[0].Error, "execution environment failure") {
		t.Errorf("error = %q", res.Results[0].Error)
	}
}

func TestServerSideRunnerStagesDriverSeparately(t *testing.T) {
	fake := &fakeSandbox{capture: &sandbox.Capture{
		Stdout: `{"index":0,"passed":true,"output":10}` + "\n" + `{"index":1,"passed":true,"output":6}`,
	}}
	r := NewServerSideRunner(fake, testStager(t), languages.NewRegistry(), testLimits(), testLogger())

	req := scriptRequest()
	req.Language = engine.LangServerSide
	req.Code = "<?php function double($n) { return $n * 2; }"

	res, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	// User code is staged unmodified, the driver lives in its own file.
	if fake.staged["solution.php"] != req.Code {
		t.Error("user code was rewritten")
	}
	if !strings.Contains(fake.staged["driver.php"], "$argv[1]") {
		t.Error("fixed driver missing or wrong")
	}
	if !strings.Contains(fake.staged["testcases.json"], `"expected":10`) {
		t.Error("serialized test cases missing")
	}

	// The target function name rides as the last positional argument.
	cmd := fake.spec.Cmd
	if len(cmd) == 0 || cmd[len(cmd)-1] != "double" {
		t.Errorf("cmd = %v, want function name as final argument", cmd)
	}
}

func TestCompiledRunnerContainerBackend(t *testing.T) {
	fake := &fakeSandbox{capture: &sandbox.Capture{
		Stdout: `[{"passed":true,"expected":10,"actual":10},{"passed":true,"expected":6,"actual":6}]`,
	}}
	r := NewCompiledRunner(nil, false, fake, testStager(t), languages.NewRegistry(), testLimits(), testLogger())

	req := scriptRequest()
	req.Language = engine.LangCompiled
	req.Code = "func double(n int) int { return n * 2 }"

	res, backend, err := r.run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if backend != BackendContainer {
		t.Errorf("backend = %s, want container", backend)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	// Three read-only inputs for the prebuilt image's test runner.
	for _, name := range []string{"solution.go", "testcases.json", "metadata.json"} {
		if _, ok := fake.staged[name]; !ok {
			t.Errorf("%s was not staged", name)
		}
	}
	if !strings.Contains(fake.staged["metadata.json"], `"functionName":"double"`) {
		t.Errorf("metadata.json = %s", fake.staged["metadata.json"])
	}
}

func TestCompiledRunnerFallsBackWhenToolchainMissing(t *testing.T) {
	fake := &fakeSandbox{capture: &sandbox.Capture{
		Stdout: `[{"passed":true,"expected":10,"actual":10},{"passed":true,"expected":6,"actual":6}]`,
	}}
	// A toolchain binary that cannot exist forces the availability probe
	// to fail, which must silently select the container backend.
	native := NewNativeBackend("definitely-not-a-go-binary", time.Second, testLogger())
	r := NewCompiledRunner(native, true, fake, testStager(t), languages.NewRegistry(), testLimits(), testLogger())

	req := scriptRequest()
	req.Language = engine.LangCompiled
	req.Code = "func double(n int) int { return n * 2 }"

	res, backend, err := r.run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if backend != BackendContainer {
		t.Errorf("backend = %s, want container fallback", backend)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
}

func TestCompiledRunnerWrongAnswer(t *testing.T) {
	fake := &fakeSandbox{capture: &sandbox.Capture{
		Stdout: `[{"passed":true,"expected":10,"actual":10},{"passed":false,"expected":6,"actual":7}]`,
	}}
	r := NewCompiledRunner(nil, false, fake, testStager(t), languages.NewRegistry(), testLimits(), testLogger())

	req := scriptRequest()
	req.Language = engine.LangCompiled

	res, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success {
		t.Fatal("wrong answer must fail")
	}
	failing := 0
	for _, tr := range res.Results {
		if !tr.Passed {
			failing++
			if tr.Error == "" {
				t.Error("failing result must carry a message")
			}
		}
	}
	if failing != 1 {
		t.Errorf("failing = %d, want exactly 1", failing)
	}
}
