package sandbox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Stager hands out per-submission staging directories under a shared
// root. Isolation is by naming: every directory carries a fresh UUID, so
// concurrent submissions never touch each other's files and no locking
// is needed.
type Stager struct {
	root string
}

func NewStager(root string) (*Stager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging root %s: %w", root, err)
	}
	return &Stager{root: root}, nil
}

// Staging is one submission's scratch directory. Remove it on every
// exit path.
type Staging struct {
	ID  string
	Dir string
}

func (s *Stager) Create() (*Staging, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	return &Staging{ID: id, Dir: dir}, nil
}

// Write stages a file and returns its host path. Files are world-readable
// because containers run as an unprivileged user.
func (st *Staging) Write(name string, data []byte) (string, error) {
	path := filepath.Join(st.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", name, err)
	}
	return path, nil
}

func (st *Staging) Remove() {
	_ = os.RemoveAll(st.Dir)
}
