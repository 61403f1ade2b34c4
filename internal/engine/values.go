package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Equal is the engine's canonical deep-equality rule, shared by every
// backend so a submission passes or fails identically regardless of
// which runner judged it:
//   - both sides are JSON-normalized first, so a Go int, a float64 and a
//     json.Number carrying the same value compare equal
//   - numbers compare by value, with string representation as tie-breaker
//   - objects compare key-order independently
//   - arrays compare positionally
func Equal(expected, actual any) bool {
	return equalValues(normalizeValue(expected), normalizeValue(actual))
}

// normalizeValue round-trips v through JSON so every nested value is one
// of: nil, bool, json.Number, string, []any, map[string]any.
func normalizeValue(v any) any {
	buf, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, aok := a.(json.Number); aok {
		if bn, bok := b.(json.Number); bok {
			return numbersEqual(an, bn)
		}
		return false
	}

	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, present := bv[k]
			if !present || !equalValues(v, bval) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func numbersEqual(a, b json.Number) bool {
	if a.String() == b.String() {
		return true
	}
	af, aerr := a.Float64()
	bf, berr := b.Float64()
	if aerr == nil && berr == nil {
		return af == bf
	}
	return false
}

// Render gives a stable human-readable form of a value for error messages.
func Render(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(buf)
}
