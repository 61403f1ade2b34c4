package engine

import (
	"strings"
	"testing"
	"time"
)

func threeCases() []TestCase {
	return []TestCase{
		{Input: []any{1.0}, Expected: 2.0},
		{Input: []any{2.0}, Expected: 4.0},
		{Input: []any{3.0}, Expected: 6.0},
	}
}

func TestNormalizeRecordsAllPassing(t *testing.T) {
	raw := `{"index":0,"passed":true,"output":2}
{"index":1,"passed":true,"output":4}
{"index":2,"passed":true,"output":6}`

	res := NormalizeRecords(raw, threeCases(), 300*time.Millisecond, false)

	if !res.Success {
		t.Fatal("expected success")
	}
	if len(res.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(res.Results))
	}
	if res.Metrics.PassedTests != 3 || res.Metrics.TotalTests != 3 {
		t.Errorf("metrics = %+v", res.Metrics)
	}
	if res.Metrics.TotalMemoryKb != 0 {
		t.Errorf("TotalMemoryKb = %d, want 0 placeholder", res.Metrics.TotalMemoryKb)
	}
}

func TestNormalizeRecordsOutOfOrder(t *testing.T) {
	// Drivers may run cases in any order; index tagging restores
	// positional correspondence.
	raw := `{"index":2,"passed":true,"output":6}
{"index":0,"passed":false,"output":3}
{"index":1,"passed":true,"output":4}`

	res := NormalizeRecords(raw, threeCases(), time.Second, false)

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Results[0].Passed || !res.Results[1].Passed || !res.Results[2].Passed {
		t.Errorf("pass pattern = %v %v %v", res.Results[0].Passed, res.Results[1].Passed, res.Results[2].Passed)
	}
	if res.Results[0].Error == "" {
		t.Error("failing result should carry an error message")
	}
}

func TestNormalizeRecordsGarbageOutput(t *testing.T) {
	res := NormalizeRecords("segmentation fault\ncore dumped", threeCases(), time.Second, false)

	if res.Success {
		t.Fatal("expected failure")
	}
	if len(res.Results) != 3 {
		t.Fatalf("got %d results, want one per test case", len(res.Results))
	}
	for i, r := range res.Results {
		if !strings.Contains(r.Error, "failed to parse") {
			t.Errorf("result %d error = %q, want parse failure", i, r.Error)
		}
	}
}

func TestNormalizeRecordsMissingCase(t *testing.T) {
	raw := `{"index":0,"passed":true,"output":2}`

	res := NormalizeRecords(raw, threeCases(), time.Second, false)

	if res.Success {
		t.Fatal("expected failure: two cases produced no record")
	}
	if len(res.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(res.Results))
	}
	for _, i := range []int{1, 2} {
		if res.Results[i].Passed || res.Results[i].Error == "" {
			t.Errorf("result %d should be a synthetic failure, got %+v", i, res.Results[i])
		}
	}
}

func TestNormalizeRecordsEmbeddedJSON(t *testing.T) {
	// PHP prints banners and deprecation noise around the payload.
	raw := `PHP Deprecated: something in /workspace/solution.php on line 3
prefix noise {"index":0,"passed":true,"output":2} trailing
{"index":1,"passed":true,"output":4}
{"index":2,"passed":true,"output":6}`

	res := NormalizeRecords(raw, threeCases(), time.Second, true)

	if !res.Success {
		t.Fatalf("expected success, results = %+v", res.Results)
	}
}

func TestNormalizeRecordsRejudgesDriverVerdict(t *testing.T) {
	// A driver comparing maps by serialized form sees key order and
	// wrongly fails this case; the canonical comparison does not.
	cases := []TestCase{{Input: []any{1.0}, Expected: map[string]any{"a": 1.0, "b": 2.0}}}
	raw := `{"index":0,"passed":false,"output":{"b":2,"a":1}}`

	res := NormalizeRecords(raw, cases, time.Second, false)

	if !res.Success {
		t.Fatalf("key order must not affect the verdict, got %+v", res.Results)
	}

	// The reverse: a loose driver claims a pass the canonical
	// comparison rejects (string "2" is not the number 2).
	raw = `{"index":0,"passed":true,"output":"2"}`
	res = NormalizeRecords(raw, []TestCase{{Input: []any{1.0}, Expected: 2.0}}, time.Second, false)

	if res.Success {
		t.Fatal("driver pass claim must not override the canonical comparison")
	}
	if !strings.Contains(res.Results[0].Error, "expected 2") {
		t.Errorf("mismatch message = %q", res.Results[0].Error)
	}
}

func TestNormalizeHarnessOutputRejudgesVerdict(t *testing.T) {
	cases := []TestCase{{Input: []any{1.0}, Expected: map[string]any{"a": 1.0, "b": 2.0}}}
	raw := `[{"passed":false,"expected":{"a":1,"b":2},"actual":{"b":2,"a":1}}]`

	res := NormalizeHarnessOutput(raw, cases, time.Second)

	if !res.Success {
		t.Fatalf("key order must not affect the verdict, got %+v", res.Results)
	}
}

func TestNormalizeHarnessOutput(t *testing.T) {
	raw := `[{"passed":true,"expected":2,"actual":2},{"passed":false,"expected":4,"actual":5}]`
	cases := threeCases()[:2]

	res := NormalizeHarnessOutput(raw, cases, time.Second)

	if res.Success {
		t.Fatal("expected failure")
	}
	if !res.Results[0].Passed || res.Results[1].Passed {
		t.Errorf("pass pattern wrong: %+v", res.Results)
	}
	if !strings.Contains(res.Results[1].Error, "expected 4") {
		t.Errorf("mismatch message = %q", res.Results[1].Error)
	}
}

func TestNormalizeHarnessOutputWithSurroundingNoise(t *testing.T) {
	raw := "go: downloading nothing\n[{\"passed\":true,\"expected\":2,\"actual\":2}]\ntrailing"

	res := NormalizeHarnessOutput(raw, threeCases()[:1], time.Second)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res.Results)
	}
}

func TestNormalizeHarnessOutputGarbage(t *testing.T) {
	res := NormalizeHarnessOutput("not json at all", threeCases(), time.Second)

	if res.Success || len(res.Results) != 3 {
		t.Fatalf("want 3 failing results, got %+v", res)
	}
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		raw     string
		wantHit bool
		wantSub string
	}{
		{"sh: go: command not found", true, "toolchain"},
		{"./main.go:12:2: missing return", true, "missing return"},
		{"main.go:3:1: syntax error: unexpected }", true, "syntax"},
		{"go: cannot find module providing package", true, "module"},
		{"main.go:9:2: undefined: fmtt", true, "undefined"},
		{"all good here", false, ""},
	}

	for _, tt := range tests {
		msg, ok := ClassifyFailure(tt.raw)
		if ok != tt.wantHit {
			t.Errorf("ClassifyFailure(%q) hit = %v, want %v", tt.raw, ok, tt.wantHit)
			continue
		}
		if ok && !strings.Contains(strings.ToLower(msg), tt.wantSub) {
			t.Errorf("ClassifyFailure(%q) = %q, want mention of %q", tt.raw, msg, tt.wantSub)
		}
	}
}

func TestTimeoutResult(t *testing.T) {
	res := TimeoutResult(threeCases(), 5*time.Second)

	if res.Success {
		t.Fatal("timeout must not be a success")
	}
	if len(res.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(res.Results))
	}
	for _, r := range res.Results {
		if !strings.Contains(r.Error, "timed out") {
			t.Errorf("error = %q, want timeout mention", r.Error)
		}
	}
}

func TestFinalizeSuccessRequiresAllPassed(t *testing.T) {
	all := []TestResult{{Passed: true}, {Passed: true}}
	if !Finalize(all, time.Second).Success {
		t.Error("all passed should be success")
	}

	mixed := []TestResult{{Passed: true}, {Passed: false}}
	if Finalize(mixed, time.Second).Success {
		t.Error("one failure must fail the submission")
	}

	if Finalize(nil, 0).Success {
		t.Error("zero results must not be success")
	}
}
