package harness

import "testing"

func TestRenderArgs(t *testing.T) {
	tests := []struct {
		name  string
		input []any
		types []string
		want  string
	}{
		{"int from json float", []any{5.0}, []string{"int"}, "5"},
		{"integer alias", []any{7.0}, []string{"integer"}, "7"},
		{"float keeps decimal", []any{2.5}, []string{"float"}, "2.5"},
		{"whole float forced", []any{5.0}, []string{"float64"}, "5.0"},
		{"string quoted", []any{"he\"llo"}, []string{"string"}, `"he\"llo"`},
		{"bool", []any{true}, []string{"bool"}, "true"},
		{"int slice", []any{[]any{1.0, 2.0, 3.0}}, []string{"[]int"}, "[]int{1, 2, 3}"},
		{"string slice", []any{[]any{"a", "b"}}, []string{"[]string"}, `[]string{"a", "b"}`},
		{"multiple params", []any{2.0, "x"}, []string{"int", "string"}, `2, "x"`},
		{"unknown type number", []any{3.0}, []string{"mystery"}, "3"},
		{"unknown type string stays quoted", []any{"s"}, nil, `"s"`},
		{"missing type tag", []any{1.0, 2.0}, []string{"int"}, "1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderArgs(tt.input, tt.types); got != tt.want {
				t.Errorf("RenderArgs(%v, %v) = %q, want %q", tt.input, tt.types, got, tt.want)
			}
		})
	}
}
