package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
)

type scriptData struct {
	UserCode     string
	FunctionName string
	TestsJSON    string
}

// jsDriver wraps a JavaScript submission into a self-checking script.
// The user code is embedded verbatim at the top, followed by a serialized
// copy of the test cases (descriptions stripped) and a loop that prints
// one JSON record per case. A test whose sole input is itself an array is
// passed directly; otherwise the input sequence is spread positionally.
var jsDriver = template.Must(template.New("jsdriver").Parse(`{{.UserCode}}

const __tests = {{.TestsJSON}};

function __compare(expected, actual) {
	if ((typeof expected === 'object' && expected !== null) || Array.isArray(expected)) {
		return JSON.stringify(expected) === JSON.stringify(actual);
	}
	return expected === actual;
}

for (let __i = 0; __i < __tests.length; __i++) {
	const __t = __tests[__i];
	const __record = { index: __i, passed: false, output: null, error: null };
	try {
		let __out;
		if (__t.input.length === 1 && Array.isArray(__t.input[0])) {
			__out = {{.FunctionName}}(__t.input[0]);
		} else {
			__out = {{.FunctionName}}(...__t.input);
		}
		__record.output = __out === undefined ? null : __out;
		__record.passed = __compare(__t.expected, __record.output);
	} catch (__e) {
		__record.error = String(__e && __e.message ? __e.message : __e);
	}
	console.log(JSON.stringify(__record));
}
`))

type driverTest struct {
	Input    []any `json:"input"`
	Expected any   `json:"expected"`
}

// SerializeTests strips internal-only fields from the test cases and
// returns their JSON form, the shape both driver templates embed.
func SerializeTests(cases []engine.TestCase) (string, error) {
	tests := make([]driverTest, len(cases))
	for i, tc := range cases {
		tests[i] = driverTest{Input: tc.Input, Expected: tc.Expected}
	}
	buf, err := json.Marshal(tests)
	if err != nil {
		return "", fmt.Errorf("failed to serialize test cases: %w", err)
	}
	return string(buf), nil
}

// GenerateScriptDriver produces the complete Node driver for one
// JavaScript submission.
func GenerateScriptDriver(code string, cases []engine.TestCase, meta engine.FunctionMetadata) (string, error) {
	if meta.FunctionName == "" {
		return "", fmt.Errorf("failed to generate driver: function name is empty")
	}
	tests, err := SerializeTests(cases)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = jsDriver.Execute(&buf, scriptData{
		UserCode:     code,
		FunctionName: meta.FunctionName,
		TestsJSON:    tests,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render driver template: %w", err)
	}
	return buf.String(), nil
}
