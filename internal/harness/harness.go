// Package harness turns a bare user-written function into a complete,
// self-checking program. The generated program runs every test case and
// prints one JSON array of per-test results as its sole stdout output.
package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
)

type programCall struct {
	Index        int
	CallExpr     string
	ExpectedJSON string
}

type programData struct {
	UserCode string
	Calls    []programCall
}

// goProgram has three named slots: the cleaned user code, one synthesized
// call per test case, and the fixed comparison/reporting logic. Keeping
// the slots explicit means the user code stays textually opaque and the
// scaffold can be unit-tested without compiling anything.
var goProgram = template.Must(template.New("harness").Parse(`package main

import (
	"encoding/json"
	"fmt"
)

{{.UserCode}}

type caseResult struct {
	Passed   bool        ` + "`json:\"passed\"`" + `
	Expected interface{} ` + "`json:\"expected\"`" + `
	Actual   interface{} ` + "`json:\"actual\"`" + `
	Error    string      ` + "`json:\"error,omitempty\"`" + `
}

func caseDecode(raw string) interface{} {
	var v interface{}
	_ = json.Unmarshal([]byte(raw), &v)
	return v
}

func caseNumber(v interface{}) (string, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v), true
	case json.Number:
		return fmt.Sprint(v), true
	}
	return "", false
}

func caseEqual(expected, actual interface{}) bool {
	if en, eok := caseNumber(expected); eok {
		if an, aok := caseNumber(actual); aok {
			return en == an
		}
	}
	eb, _ := json.Marshal(expected)
	ab, _ := json.Marshal(actual)
	return string(eb) == string(ab)
}

func runCase(expected interface{}, call func() interface{}) (res caseResult) {
	defer func() {
		if r := recover(); r != nil {
			res = caseResult{Passed: false, Expected: expected, Error: fmt.Sprint(r)}
		}
	}()
	actual := call()
	return caseResult{Passed: caseEqual(expected, actual), Expected: expected, Actual: actual}
}

func main() {
	results := make([]caseResult, 0, {{len .Calls}})
{{- range .Calls}}
	results = append(results, runCase(caseDecode({{printf "%q" .ExpectedJSON}}), func() interface{} { return {{.CallExpr}} }))
{{- end}}
	out, _ := json.Marshal(results)
	fmt.Println(string(out))
}
`))

// Generate produces the complete Go program for one submission. The user
// code is cleaned (no package clause, no imports, no main) and one call
// is synthesized per test case with type-directed argument literals.
func Generate(code string, cases []engine.TestCase, meta engine.FunctionMetadata) (string, error) {
	if meta.FunctionName == "" {
		return "", fmt.Errorf("failed to generate harness: function name is empty")
	}

	calls := make([]programCall, len(cases))
	for i, tc := range cases {
		expected, err := json.Marshal(tc.Expected)
		if err != nil {
			return "", fmt.Errorf("failed to serialize expected value for case %d: %w", i, err)
		}
		calls[i] = programCall{
			Index:        i,
			CallExpr:     fmt.Sprintf("%s(%s)", meta.FunctionName, RenderArgs(tc.Input, meta.ParameterTypes)),
			ExpectedJSON: string(expected),
		}
	}

	var buf bytes.Buffer
	err := goProgram.Execute(&buf, programData{
		UserCode: Clean(code),
		Calls:    calls,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render harness template: %w", err)
	}
	return buf.String(), nil
}
