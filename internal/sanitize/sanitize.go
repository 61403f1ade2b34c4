// Package sanitize screens submitted code for patterns that should never
// reach a sandbox: host escapes, network use, fork bombs. It is a cheap
// first gate, not the isolation boundary; the sandbox still assumes the
// code is hostile.
package sanitize

import (
	"fmt"
	"regexp"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
)

type RejectionError struct {
	Category string
	Details  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("prohibited operation detected (%s): %s", e.Category, e.Details)
}

type patternCategory struct {
	name        string
	description string
	patterns    []*regexp.Regexp
}

// Screener implements engine.Screener over per-language pattern tables.
type Screener struct {
	maxCodeLength int
	common        []patternCategory
	perLanguage   map[engine.Language][]patternCategory
}

var _ engine.Screener = (*Screener)(nil)

func NewScreener(maxCodeLength int) *Screener {
	return &Screener{
		maxCodeLength: maxCodeLength,
		common:        commonPatterns,
		perLanguage: map[engine.Language][]patternCategory{
			engine.LangScript:     jsPatterns,
			engine.LangCompiled:   goPatterns,
			engine.LangServerSide: phpPatterns,
		},
	}
}

func (s *Screener) Screen(code string, lang engine.Language) error {
	if s.maxCodeLength > 0 && len(code) > s.maxCodeLength {
		return &RejectionError{
			Category: "codeLength",
			Details:  fmt.Sprintf("submission exceeds the %d byte limit", s.maxCodeLength),
		}
	}

	for _, category := range s.common {
		if match(category.patterns, code) {
			return &RejectionError{Category: category.name, Details: category.description}
		}
	}
	for _, category := range s.perLanguage[lang] {
		if match(category.patterns, code) {
			return &RejectionError{Category: category.name, Details: category.description}
		}
	}
	return nil
}

func match(patterns []*regexp.Regexp, code string) bool {
	for _, p := range patterns {
		if p.MatchString(code) {
			return true
		}
	}
	return false
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var commonPatterns = []patternCategory{
	{
		name:        "processSpawning",
		description: "spawning processes is not allowed",
		patterns: compile(
			`(?i)exec\.Command`,
			`(?i)syscall\.Exec`,
			`proc_open\s*\(`,
			`popen\s*\(`,
			`require\(['"]child_process['"]\)`,
		),
	},
	{
		name:        "forkBombs",
		description: "fork bomb patterns are not allowed",
		patterns: compile(
			`:\s*\(\)\s*{\s*:\|:\s*&\s*}\s*;\s*:`,
			`(?i)while\s*\(\s*true\s*\)\s*{\s*fork\s*\(`,
			`pcntl_fork`,
			`cluster\.fork\(\)`,
		),
	},
}

var jsPatterns = []patternCategory{
	{
		name:        "dangerousModules",
		description: "importing host-access modules is not allowed",
		patterns: compile(
			`require\(['"]fs['"]\)`,
			`require\(['"]net['"]\)`,
			`require\(['"]http['"]\)`,
			`require\(['"]os['"]\)`,
			`import\s+.*\s+from\s+['"]fs['"]`,
			`import\s+.*\s+from\s+['"]child_process['"]`,
		),
	},
	{
		name:        "dynamicEvaluation",
		description: "dynamic code evaluation is not allowed",
		patterns: compile(
			`\beval\s*\(`,
			`new\s+Function\s*\(`,
			`process\.exit`,
		),
	},
}

var goPatterns = []patternCategory{
	{
		name:        "hostAccess",
		description: "filesystem and network access is not allowed",
		patterns: compile(
			`os\.Remove`,
			`os\.RemoveAll`,
			`os\.Exit`,
			`net\.Dial`,
			`net\.Listen`,
			`http\.Get`,
			`http\.Post`,
		),
	},
	{
		name:        "resourceDepletion",
		description: "resource depletion patterns are not allowed",
		patterns: compile(
			`make\s*\(\s*\[\]\w+\s*,\s*\d{9,}\s*\)`,
			`runtime\.GOMAXPROCS\s*\(\s*\d{3,}\s*\)`,
		),
	},
}

var phpPatterns = []patternCategory{
	{
		name:        "hostAccess",
		description: "host access functions are not allowed",
		patterns: compile(
			`\bsystem\s*\(`,
			`\bshell_exec\s*\(`,
			`\bpassthru\s*\(`,
			`\bunlink\s*\(`,
			`file_put_contents\s*\(`,
			`fsockopen\s*\(`,
			`curl_init\s*\(`,
		),
	},
	{
		name:        "dynamicEvaluation",
		description: "dynamic code evaluation is not allowed",
		patterns: compile(
			`\beval\s*\(`,
			`\bassert\s*\(\s*\$`,
			`create_function\s*\(`,
		),
	},
}
