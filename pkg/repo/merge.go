package repo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/odvcencio/gato/pkg/merge3"
	"github.com/odvcencio/gato/pkg/object"
)

var ErrMergeConflict = errors.New("repo: merge conflict: entry is a blob on one side and a subtree on the other")

// MergeResult reports the outcome of Merge.
type MergeResult struct {
	CommitHash object.Hash
	Conflicts  []string // paths where a text three-way merge produced conflict markers
}

// Merge reconciles the active branch's tip with targetBranch's tip
// against their merge base, producing a Merge commit regardless of
// whether any text conflicts occurred; conflicts are reported
// alongside the successful commit, not raised as an error, except
// when a path is a blob on one side and a subtree on the other.
func (r *Repo) Merge(targetBranch, message string) (*MergeResult, error) {
	active, err := r.Head()
	if err != nil {
		return nil, err
	}
	currentTip, err := r.ReadRef(active)
	if err != nil {
		return nil, fmt.Errorf("repo: merge: %w", err)
	}
	targetTip, err := r.ReadRef(targetBranch)
	if err != nil {
		return nil, fmt.Errorf("repo: merge: %w", err)
	}

	base, err := r.MergeBase(currentTip, targetTip)
	if err != nil {
		return nil, fmt.Errorf("repo: merge: %w", err)
	}

	currentCommit, err := r.LoadCommit(currentTip)
	if err != nil {
		return nil, err
	}
	targetCommit, err := r.LoadCommit(targetTip)
	if err != nil {
		return nil, err
	}
	baseCommit, err := r.LoadCommit(base)
	if err != nil {
		return nil, err
	}

	var conflicts []string
	var treeHashes []object.Hash
	mergedTree, err := r.reconcile(baseCommit.Tree, currentCommit.Tree, targetCommit.Tree, "", &conflicts, &treeHashes)
	if err != nil {
		return nil, fmt.Errorf("repo: merge: %w", err)
	}

	deps := unionHashes(currentCommit.Deps, targetCommit.Deps, treeHashes)
	commit := &object.Commit{
		Kind:      object.CommitMerge,
		Message:   message,
		Author:    r.Config.Author,
		Email:     r.Config.Email,
		Timestamp: nowUnix(),
		Tree:      mergedTree,
		Parent1:   currentTip,
		Parent2:   targetTip,
		Deps:      deps,
	}
	commitHash := object.HashCommit(commit)
	if _, err := r.Store.Put(object.KindCommit, object.MarshalCommit(commit)); err != nil {
		return nil, fmt.Errorf("repo: merge: put commit: %w", err)
	}
	if err := r.WriteRef(active, commitHash); err != nil {
		return nil, fmt.Errorf("repo: merge: update ref %q: %w", active, err)
	}

	sort.Strings(conflicts)
	return &MergeResult{CommitHash: commitHash, Conflicts: conflicts}, nil
}

// reconcile merges the trees at base, current, and target (any may be
// the zero Hash, meaning absent) at the given path prefix, writing any
// new tree/blob objects it produces and returning the merged tree's
// hash.
func (r *Repo) reconcile(base, current, target object.Hash, prefix string, conflicts *[]string, treeHashes *[]object.Hash) (object.Hash, error) {
	baseEntries, err := r.entriesOf(base)
	if err != nil {
		return object.Hash{}, err
	}
	currentEntries, err := r.entriesOf(current)
	if err != nil {
		return object.Hash{}, err
	}
	targetEntries, err := r.entriesOf(target)
	if err != nil {
		return object.Hash{}, err
	}

	names := unionNames(baseEntries, currentEntries, targetEntries)

	out := &object.Tree{Name: treeName(prefix)}
	for _, name := range names {
		b, bOk := baseEntries[name]
		c, cOk := currentEntries[name]
		t, tOk := targetEntries[name]

		full := name
		if prefix != "" {
			full = prefix + "/" + name
		}

		entry, present, err := r.reconcileEntry(name, full, b, bOk, c, cOk, t, tOk, conflicts, treeHashes)
		if err != nil {
			return object.Hash{}, err
		}
		if present {
			out.Entries = append(out.Entries, entry)
		}
	}

	h := object.HashTree(out)
	if !r.Store.Has(h) {
		if _, err := r.Store.Put(object.KindTree, object.MarshalTree(out)); err != nil {
			return object.Hash{}, fmt.Errorf("put tree %q: %w", prefix, err)
		}
	}
	*treeHashes = append(*treeHashes, h)
	return h, nil
}

func (r *Repo) reconcileEntry(
	name, full string,
	b object.TreeEntry, bOk bool,
	c object.TreeEntry, cOk bool,
	t object.TreeEntry, tOk bool,
	conflicts *[]string, treeHashes *[]object.Hash,
) (object.TreeEntry, bool, error) {
	currentSame := !bOk && !cOk || bOk && cOk && b.Kind == c.Kind && b.Hash == c.Hash
	targetSame := !bOk && !tOk || bOk && tOk && b.Kind == t.Kind && b.Hash == t.Hash

	switch {
	case currentSame && targetSame:
		if cOk {
			return c, true, nil
		}
		return object.TreeEntry{}, false, nil

	case currentSame && !targetSame:
		if !tOk {
			return object.TreeEntry{}, false, nil
		}
		return object.TreeEntry{Kind: t.Kind, Name: name, Hash: t.Hash}, true, nil

	case !currentSame && targetSame:
		if !cOk {
			return object.TreeEntry{}, false, nil
		}
		return object.TreeEntry{Kind: c.Kind, Name: name, Hash: c.Hash}, true, nil

	default: // both sides changed relative to base
		switch {
		case !cOk && tOk:
			return object.TreeEntry{Kind: t.Kind, Name: name, Hash: t.Hash}, true, nil
		case cOk && !tOk:
			return object.TreeEntry{Kind: c.Kind, Name: name, Hash: c.Hash}, true, nil
		case !cOk && !tOk:
			return object.TreeEntry{}, false, nil
		case c.Kind != t.Kind:
			return object.TreeEntry{}, false, fmt.Errorf("%q: %w", full, ErrMergeConflict)
		case c.Kind == object.EntrySubTree:
			var baseSub object.Hash
			if bOk && b.Kind == object.EntrySubTree {
				baseSub = b.Hash
			}
			subHash, err := r.reconcile(baseSub, c.Hash, t.Hash, full, conflicts, treeHashes)
			if err != nil {
				return object.TreeEntry{}, false, err
			}
			return object.TreeEntry{Kind: object.EntrySubTree, Name: name, Hash: subHash}, true, nil
		default: // both blobs, both changed: text three-way merge
			mergedHash, conflicted, err := r.mergeBlobs(full, b, bOk, c, t)
			if err != nil {
				return object.TreeEntry{}, false, err
			}
			if conflicted {
				*conflicts = append(*conflicts, full)
			}
			// The merged blob is new to both parents' deps; record it so
			// the merge commit's deps stay complete for GC.
			*treeHashes = append(*treeHashes, mergedHash)
			return object.TreeEntry{Kind: object.EntryBlobRef, Name: name, Hash: mergedHash}, true, nil
		}
	}
}

func (r *Repo) mergeBlobs(path string, b object.TreeEntry, bOk bool, c, t object.TreeEntry) (object.Hash, bool, error) {
	var baseBytes []byte
	if bOk {
		data, err := r.ReadBlob(b.Hash)
		if err != nil {
			return object.Hash{}, false, err
		}
		baseBytes = data
	}
	currentBytes, err := r.ReadBlob(c.Hash)
	if err != nil {
		return object.Hash{}, false, err
	}
	targetBytes, err := r.ReadBlob(t.Hash)
	if err != nil {
		return object.Hash{}, false, err
	}

	result := merge3.Merge(baseBytes, currentBytes, targetBytes)
	h, err := r.putInlineBlob(result.Merged)
	if err != nil {
		return object.Hash{}, false, fmt.Errorf("merge %q: %w", path, err)
	}
	return h, result.Conflict, nil
}

// entriesOf returns the direct children of the tree at h, keyed by
// name. The zero Hash is treated as an absent tree (empty map).
func (r *Repo) entriesOf(h object.Hash) (map[string]object.TreeEntry, error) {
	if h == (object.Hash{}) {
		return map[string]object.TreeEntry{}, nil
	}
	tree, err := r.LoadTree(h)
	if err != nil {
		return nil, err
	}
	out := make(map[string]object.TreeEntry, len(tree.Entries))
	for _, e := range tree.Entries {
		out[e.Name] = e
	}
	return out, nil
}

func unionNames(maps ...map[string]object.TreeEntry) []string {
	seen := make(map[string]struct{})
	for _, m := range maps {
		for name := range m {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
