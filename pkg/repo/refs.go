package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/gato/pkg/object"
)

var ErrBranchNotFound = errors.New("repo: branch not found")

// Head returns the name of the active branch.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.RepoDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("repo: read HEAD: %w", err)
	}
	return string(data), nil
}

// setHead overwrites HEAD with name.
func (r *Repo) setHead(name string) error {
	return writeFileAtomic(filepath.Join(r.RepoDir, "HEAD"), []byte(name), 0o644)
}

func (r *Repo) refPath(name string) string {
	return filepath.Join(r.RepoDir, "refs", "heads", name)
}

// RefExists reports whether branch name has a ref file.
func (r *Repo) RefExists(name string) bool {
	_, err := os.Stat(r.refPath(name))
	return err == nil
}

// ReadRef reads the commit hash branch name points to. Returns
// ErrBranchNotFound if the branch has no ref yet.
func (r *Repo) ReadRef(name string) (object.Hash, error) {
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return object.Hash{}, ErrBranchNotFound
		}
		return object.Hash{}, fmt.Errorf("repo: read ref %q: %w", name, err)
	}
	if len(data) != len(object.Hash{}) {
		return object.Hash{}, fmt.Errorf("repo: ref %q: corrupt length %d", name, len(data))
	}
	var h object.Hash
	copy(h[:], data)
	return h, nil
}

// WriteRef atomically overwrites branch name's ref to point at h.
func (r *Repo) WriteRef(name string, h object.Hash) error {
	return writeFileAtomic(r.refPath(name), h[:], 0o644)
}

// ListBranches returns every branch with a ref file, sorted by name.
func (r *Repo) ListBranches() ([]string, error) {
	dir := filepath.Join(r.RepoDir, "refs", "heads")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo: list branches: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// BranchRefs returns every branch name mapped to its tip hash,
// skipping branches without a ref yet.
func (r *Repo) BranchRefs() (map[string]object.Hash, error) {
	names, err := r.ListBranches()
	if err != nil {
		return nil, err
	}
	refs := make(map[string]object.Hash, len(names))
	for _, name := range names {
		h, err := r.ReadRef(name)
		if errors.Is(err, ErrBranchNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		refs[name] = h
	}
	return refs, nil
}
