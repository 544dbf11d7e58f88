// Package gc implements cross-repository garbage collection: marking
// every object reachable from any ref of any repository registered at
// a store root, then sweeping everything else from the store.
package gc

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/odvcencio/gato/pkg/object"
	"github.com/odvcencio/gato/pkg/registry"
	"github.com/odvcencio/gato/pkg/repo"
	"github.com/odvcencio/gato/pkg/store"
)

var ErrBlocked = errors.New("gc: a registered repository has a pending staging index")

// Result reports what a GC run did.
type Result struct {
	Reachable int
	Swept     int
}

// Run performs mark-and-sweep garbage collection across every
// repository registered at storeRoot. It refuses to run if any
// registered repository has a pending staging index.
func Run(storeRoot string) (*Result, error) {
	workDirs, err := registry.List(storeRoot)
	if err != nil {
		return nil, fmt.Errorf("gc: list registry: %w", err)
	}

	repos := make([]*repo.Repo, 0, len(workDirs))
	for _, wd := range workDirs {
		rp, err := repo.Open(wd)
		if err != nil {
			return nil, fmt.Errorf("gc: open %q: %w", wd, err)
		}
		idx, err := rp.LoadIndex()
		if err != nil {
			return nil, fmt.Errorf("gc: check pending index for %q: %w", wd, err)
		}
		if idx != nil && len(idx.Paths) > 0 {
			return nil, fmt.Errorf("%w: %q", ErrBlocked, wd)
		}
		repos = append(repos, rp)
	}

	reachable := make(map[object.Hash]struct{})
	for _, rp := range repos {
		refs, err := rp.BranchRefs()
		if err != nil {
			return nil, fmt.Errorf("gc: branch refs for %q: %w", rp.WorkDir, err)
		}
		for _, tip := range refs {
			ancestors, err := rp.Ancestors(tip)
			if err != nil {
				return nil, fmt.Errorf("gc: walk ancestors for %q: %w", rp.WorkDir, err)
			}
			for h := range ancestors {
				reachable[h] = struct{}{}
				commit, err := rp.LoadCommit(h)
				if err != nil {
					return nil, fmt.Errorf("gc: load commit %s: %w", h, err)
				}
				reachable[commit.Tree] = struct{}{}
				for _, d := range commit.Deps {
					reachable[d] = struct{}{}
				}
			}
		}
	}

	st := store.New(filepath.Join(storeRoot, "objects"), 0)
	all, err := st.ListAll()
	if err != nil {
		return nil, fmt.Errorf("gc: list store: %w", err)
	}

	swept := 0
	for _, h := range all {
		if _, ok := reachable[h]; ok {
			continue
		}
		if err := st.Delete(h); err != nil {
			return nil, fmt.Errorf("gc: delete %s: %w", h, err)
		}
		swept++
	}

	return &Result{Reachable: len(reachable), Swept: swept}, nil
}
