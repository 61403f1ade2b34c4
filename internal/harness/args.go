package harness

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RenderArgs turns one test case's input values into Go call-argument
// source text, casting each literal according to the declared parameter
// type. A missing or unrecognized type tag falls back to embedding the
// value's JSON form untyped.
func RenderArgs(input []any, paramTypes []string) string {
	parts := make([]string, len(input))
	for i, v := range input {
		tag := ""
		if i < len(paramTypes) {
			tag = paramTypes[i]
		}
		parts[i] = renderArg(v, tag)
	}
	return strings.Join(parts, ", ")
}

func renderArg(v any, tag string) string {
	switch normalizeTag(tag) {
	case "int":
		return renderInt(v)
	case "float64":
		return renderFloat(v)
	case "string":
		return strconv.Quote(fmt.Sprint(v))
	case "bool":
		return renderBool(v)
	case "[]int":
		return renderSlice(v, "int", renderInt)
	case "[]float64":
		return renderSlice(v, "float64", renderFloat)
	case "[]string":
		return renderSlice(v, "string", func(e any) string { return strconv.Quote(fmt.Sprint(e)) })
	case "[]bool":
		return renderSlice(v, "bool", renderBool)
	default:
		return renderUntyped(v)
	}
}

// normalizeTag folds the type spellings challenge authors actually use
// onto canonical Go type names.
func normalizeTag(tag string) string {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "int", "integer", "int64", "number":
		return "int"
	case "float", "float64", "double":
		return "float64"
	case "string", "str":
		return "string"
	case "bool", "boolean":
		return "bool"
	case "[]int", "int[]", "array<int>", "[]integer":
		return "[]int"
	case "[]float64", "float[]", "[]float", "array<float>":
		return "[]float64"
	case "[]string", "string[]", "array<string>":
		return "[]string"
	case "[]bool", "bool[]", "array<bool>":
		return "[]bool"
	default:
		return ""
	}
}

func renderInt(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatInt(int64(n), 10)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	default:
		return fmt.Sprint(v)
	}
}

func renderFloat(v any) string {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	default:
		return fmt.Sprint(v)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Force a float-typed literal so a whole number stays a float64.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func renderBool(v any) string {
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b)
	}
	return fmt.Sprint(v)
}

func renderSlice(v any, elemType string, render func(any) string) string {
	elems, ok := v.([]any)
	if !ok {
		return renderUntyped(v)
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = render(e)
	}
	return "[]" + elemType + "{" + strings.Join(parts, ", ") + "}"
}

// renderUntyped embeds the value's JSON form as-is. Valid Go for
// scalars; anything richer needs a declared parameter type.
func renderUntyped(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(buf)
}
