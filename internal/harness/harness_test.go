package harness

import (
	"strings"
	"testing"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
)

func TestGenerate(t *testing.T) {
	code := `package main

import "fmt"

func double(n int) int {
	return n * 2
}

func main() {
	fmt.Println(double(2))
}`

	cases := []engine.TestCase{
		{Input: []any{5.0}, Expected: 10.0},
		{Input: []any{-3.0}, Expected: -6.0, Description: "negative input"},
	}
	meta := engine.FunctionMetadata{
		FunctionName:   "double",
		ParameterTypes: []string{"int"},
		ReturnType:     "int",
	}

	program, err := Generate(code, cases, meta)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// One package clause, the harness's own.
	if strings.Count(program, "package main") != 1 {
		t.Error("expected exactly one package clause")
	}
	if strings.Contains(program, `import "fmt"`) {
		t.Error("user import block leaked into the harness")
	}
	if !strings.Contains(program, "func double(n int) int") {
		t.Error("user function missing from harness")
	}
	for _, call := range []string{"double(5)", "double(-3)"} {
		if !strings.Contains(program, call) {
			t.Errorf("synthesized call %q missing", call)
		}
	}
	// Descriptions are internal-only and must not reach the program.
	if strings.Contains(program, "negative input") {
		t.Error("test case description leaked into the harness")
	}
	if !strings.Contains(program, "json.Marshal(results)") {
		t.Error("harness must emit its results as JSON")
	}
}

func TestGenerateRequiresFunctionName(t *testing.T) {
	_, err := Generate("func f() {}", nil, engine.FunctionMetadata{})
	if err == nil {
		t.Fatal("expected an error for empty function name")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cases := []engine.TestCase{{Input: []any{1.0}, Expected: 2.0}}
	meta := engine.FunctionMetadata{FunctionName: "f", ParameterTypes: []string{"int"}}

	a, err := Generate("func f(n int) int { return n * 2 }", cases, meta)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Generate("func f(n int) int { return n * 2 }", cases, meta)
	if a != b {
		t.Error("generation is not deterministic")
	}
}
