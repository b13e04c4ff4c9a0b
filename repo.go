// Package microgit is a minimal Git client: a loose object store, ref
// management, a smart-HTTP clone pipeline, and a tree-walking checkout.
//
// The entry points are Init and Open for local repositories, and Clone,
// which discovers a remote's refs, fetches and unpacks its objects, and
// materializes the working tree.
package microgit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grafana/microgit/storage"
)

// gitDirName is the repository metadata directory.
const gitDirName = ".git"

// Repository is a local repository: a working directory with a .git layout
// beside it.
type Repository struct {
	dir     string
	gitDir  string
	objects *storage.LooseStore
}

// Init creates the repository layout under dir: .git, .git/objects,
// .git/refs, and a HEAD pointing at refs/heads/main. dir itself is created
// when missing. Initializing an existing repository is an error.
func Init(dir string) (*Repository, error) {
	gitDir := filepath.Join(dir, gitDirName)
	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("reinitializing %s: %w", dir, ErrTargetExists)
	}

	for _, sub := range []string{
		gitDir,
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs"),
	} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("creating repository layout: %w", err)
		}
	}

	r := newRepository(dir)
	if err := r.SetHEADSymbolic(DefaultBranch); err != nil {
		return nil, err
	}

	return r, nil
}

// Open attaches to an existing repository at dir.
func Open(dir string) (*Repository, error) {
	gitDir := filepath.Join(dir, gitDirName)
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotARepository)
	}

	return newRepository(dir), nil
}

func newRepository(dir string) *Repository {
	gitDir := filepath.Join(dir, gitDirName)
	return &Repository{
		dir:     dir,
		gitDir:  gitDir,
		objects: storage.NewLooseStore(filepath.Join(gitDir, "objects")),
	}
}

// Dir returns the working directory root.
func (r *Repository) Dir() string {
	return r.dir
}

// GitDir returns the metadata directory, <dir>/.git.
func (r *Repository) GitDir() string {
	return r.gitDir
}

// Objects returns the repository's loose object store.
func (r *Repository) Objects() *storage.LooseStore {
	return r.objects
}
