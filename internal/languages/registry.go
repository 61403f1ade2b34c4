package languages

import (
	"errors"
	"sync"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
)

var (
	ErrLanguageNotFound = errors.New("language not found")
)

type Registry struct {
	mu        sync.RWMutex
	languages map[engine.Language]Language
}

func NewRegistry() *Registry {
	r := &Registry{
		languages: make(map[engine.Language]Language),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) Register(id engine.Language, lang Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languages[id] = lang
}

func (r *Registry) Get(id engine.Language) (Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.languages[id]
	if !ok {
		return Language{}, ErrLanguageNotFound
	}
	return lang, nil
}

func (r *Registry) List() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	langs := make([]Language, 0, len(r.languages))
	for _, l := range r.languages {
		langs = append(langs, l)
	}
	return langs
}

func (r *Registry) registerDefaults() {
	r.Register(engine.LangScript, Language{
		ID:   "javascript",
		Name: "JavaScript",
		Config: RuntimeConfig{
			Image:      "node:20-slim",
			SourceFile: "solution.js",
			RunCommand: []string{"node", MountPath + "/solution.js"},
		},
	})

	r.Register(engine.LangServerSide, Language{
		ID:   "php",
		Name: "PHP",
		Config: RuntimeConfig{
			Image:      "php:8.2-cli",
			SourceFile: "solution.php",
			DriverFile: "driver.php",
			RunCommand: []string{"php", MountPath + "/driver.php"},
		},
	})

	// The Go image carries a precompiled test-runner binary; it takes the
	// user code, test cases and metadata as three positional file paths
	// and prints one JSON array of per-test results.
	r.Register(engine.LangCompiled, Language{
		ID:   "go",
		Name: "Go",
		Config: RuntimeConfig{
			Image:      "codequest/go-test-runner:1",
			SourceFile: "solution.go",
			RunCommand: []string{
				"/usr/local/bin/test-runner",
				MountPath + "/solution.go",
				MountPath + "/testcases.json",
				MountPath + "/metadata.json",
			},
		},
	})
}
