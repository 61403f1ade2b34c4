package harness

import "strings"

// Clean strips the parts of a raw Go submission that would collide with
// the generated wrapper program: the package declaration, import lines
// and blocks, and any main function the user left in. Everything else is
// preserved verbatim, in order.
//
// main is tracked by brace depth across lines, so bodies containing
// nested braces and blank lines are removed in full.
func Clean(code string) string {
	var kept []string
	inImport := false
	inMain := false
	depth := 0

	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)

		if inMain {
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 0 {
				inMain = false
			}
			continue
		}

		if inImport {
			if trimmed == ")" {
				inImport = false
			}
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "package "):
			continue
		case strings.HasPrefix(trimmed, "import ("):
			inImport = true
			continue
		case strings.HasPrefix(trimmed, "import "):
			continue
		case strings.HasPrefix(trimmed, "func main("):
			depth = strings.Count(line, "{") - strings.Count(line, "}")
			if depth > 0 {
				inMain = true
			}
			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
