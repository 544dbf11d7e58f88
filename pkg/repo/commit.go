package repo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/odvcencio/gato/pkg/object"
)

var (
	ErrNothingToCommit = errors.New("repo: nothing to commit")
	ErrNoMergeBase      = errors.New("repo: no common ancestor")
)

// Commit builds a tree from the pending staging index and records a
// Linear commit on the active branch. Fails with ErrNothingToCommit
// if no index is pending.
func (r *Repo) Commit(message string) (object.Hash, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return object.Hash{}, err
	}
	if idx == nil || len(idx.Paths) == 0 {
		return object.Hash{}, ErrNothingToCommit
	}

	treeHash, treeHashes, err := r.BuildTreeFromIndex(idx)
	if err != nil {
		return object.Hash{}, fmt.Errorf("repo: commit: %w", err)
	}

	active, err := r.Head()
	if err != nil {
		return object.Hash{}, err
	}

	var parent object.Hash
	var hasParent bool
	if h, err := r.ReadRef(active); err == nil {
		parent, hasParent = h, true
	} else if !errors.Is(err, ErrBranchNotFound) {
		return object.Hash{}, err
	}

	deps := unionHashes(idx.Deps, treeHashes)

	commit := &object.Commit{
		Kind:      object.CommitLinear,
		Message:   message,
		Author:    r.Config.Author,
		Email:     r.Config.Email,
		Timestamp: nowUnix(),
		Tree:      treeHash,
		Parent:    parent,
		HasParent: hasParent,
		Deps:      deps,
	}

	commitHash := object.HashCommit(commit)
	if _, err := r.Store.Put(object.KindCommit, object.MarshalCommit(commit)); err != nil {
		return object.Hash{}, fmt.Errorf("repo: put commit: %w", err)
	}
	if err := r.WriteRef(active, commitHash); err != nil {
		return object.Hash{}, fmt.Errorf("repo: update ref %q: %w", active, err)
	}
	if err := r.DeleteIndex(); err != nil {
		return object.Hash{}, fmt.Errorf("repo: delete index: %w", err)
	}
	return commitHash, nil
}

// LoadCommit reads and decodes the Commit object at h.
func (r *Repo) LoadCommit(h object.Hash) (*object.Commit, error) {
	kind, payload, err := r.Store.Get(h)
	if err != nil {
		return nil, fmt.Errorf("repo: load commit %s: %w", h, err)
	}
	if kind != object.KindCommit {
		return nil, fmt.Errorf("repo: load commit %s: unexpected kind %d", h, kind)
	}
	return object.UnmarshalCommit(payload)
}

// LoadByOffset walks n steps back from the active branch's tip,
// following a merge commit's first parent, and returns the resulting
// commit hash.
func (r *Repo) LoadByOffset(n int) (object.Hash, error) {
	active, err := r.Head()
	if err != nil {
		return object.Hash{}, err
	}
	tip, err := r.ReadRef(active)
	if err != nil {
		return object.Hash{}, err
	}
	return r.walkOffset(tip, n)
}

func (r *Repo) walkOffset(tip object.Hash, n int) (object.Hash, error) {
	cur := tip
	for i := 0; i < n; i++ {
		c, err := r.LoadCommit(cur)
		if err != nil {
			return object.Hash{}, err
		}
		parents := c.Parents()
		if len(parents) == 0 {
			return object.Hash{}, fmt.Errorf("repo: offset %d exceeds history depth", n)
		}
		cur = parents[0]
	}
	return cur, nil
}

// Ancestors returns the transitive closure of h under parent links
// (both parents for a Merge commit), h itself included.
func (r *Repo) Ancestors(h object.Hash) (map[object.Hash]struct{}, error) {
	seen := map[object.Hash]struct{}{}
	queue := []object.Hash{h}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		c, err := r.LoadCommit(cur)
		if err != nil {
			return nil, err
		}
		queue = append(queue, c.Parents()...)
	}
	return seen, nil
}

// MergeBase returns any commit reachable from both a and b. Tie
// breaking among multiple common ancestors is unspecified; callers
// must not depend on any particular one being chosen.
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, error) {
	ancestorsA, err := r.Ancestors(a)
	if err != nil {
		return object.Hash{}, err
	}
	ancestorsB, err := r.Ancestors(b)
	if err != nil {
		return object.Hash{}, err
	}
	for h := range ancestorsA {
		if _, ok := ancestorsB[h]; ok {
			return h, nil
		}
	}
	return object.Hash{}, ErrNoMergeBase
}

func unionHashes(sets ...[]object.Hash) []object.Hash {
	seen := make(map[object.Hash]struct{})
	for _, s := range sets {
		for _, h := range s {
			seen[h] = struct{}{}
		}
	}
	out := make([]object.Hash, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
