package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/gato/pkg/object"
)

// BuildTreeFromIndex builds the hierarchical tree for idx bottom-up,
// writing every subtree object to the store, and returns the root
// tree's hash together with the hash of every tree object produced
// (root included) so callers can fold them into a commit's deps.
func (r *Repo) BuildTreeFromIndex(idx *object.Index) (object.Hash, []object.Hash, error) {
	var treeHashes []object.Hash
	root, err := r.buildTreeLevel(idx, "", &treeHashes)
	if err != nil {
		return object.Hash{}, nil, err
	}
	return root, treeHashes, nil
}

// buildTreeLevel builds the Tree for the directory named by prefix
// (forward-slash, no trailing slash; "" is the root) from idx's
// entries, recursing into subdirectories first.
func (r *Repo) buildTreeLevel(idx *object.Index, prefix string, treeHashes *[]object.Hash) (object.Hash, error) {
	leaves := make(map[string]object.Hash)
	subdirs := make(map[string]struct{})

	for i, p := range idx.Paths {
		rel := p
		if prefix != "" {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		if slash := strings.IndexByte(rel, '/'); slash >= 0 {
			subdirs[rel[:slash]] = struct{}{}
		} else {
			leaves[rel] = idx.Entries[i].ContentHash
		}
	}

	names := make([]string, 0, len(leaves)+len(subdirs))
	for name := range leaves {
		names = append(names, name)
	}
	for name := range subdirs {
		names = append(names, name)
	}
	sort.Strings(names)

	tree := &object.Tree{Name: treeName(prefix)}
	for _, name := range names {
		if h, isLeaf := leaves[name]; isLeaf {
			tree.Entries = append(tree.Entries, object.TreeEntry{Kind: object.EntryBlobRef, Name: name, Hash: h})
			continue
		}
		childPrefix := name
		if prefix != "" {
			childPrefix = prefix + "/" + name
		}
		subHash, err := r.buildTreeLevel(idx, childPrefix, treeHashes)
		if err != nil {
			return object.Hash{}, fmt.Errorf("repo: build tree %q: %w", childPrefix, err)
		}
		tree.Entries = append(tree.Entries, object.TreeEntry{Kind: object.EntrySubTree, Name: name, Hash: subHash})
	}

	h := object.HashTree(tree)
	if !r.Store.Has(h) {
		if _, err := r.Store.Put(object.KindTree, object.MarshalTree(tree)); err != nil {
			return object.Hash{}, fmt.Errorf("repo: put tree %q: %w", prefix, err)
		}
	}
	*treeHashes = append(*treeHashes, h)
	return h, nil
}

func treeName(prefix string) string {
	if prefix == "" {
		return ""
	}
	if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
		return prefix[i+1:]
	}
	return prefix
}

// LoadTree reads and decodes the Tree object at h.
func (r *Repo) LoadTree(h object.Hash) (*object.Tree, error) {
	kind, payload, err := r.Store.Get(h)
	if err != nil {
		return nil, fmt.Errorf("repo: load tree %s: %w", h, err)
	}
	if kind != object.KindTree {
		return nil, fmt.Errorf("repo: load tree %s: unexpected kind %d", h, kind)
	}
	return object.UnmarshalTree(payload)
}

// FlatEntry is a single file within a flattened tree, keyed by its
// full forward-slash path.
type FlatEntry struct {
	Path string
	Hash object.Hash
}

// FlattenTree walks the tree at h recursively, returning every
// BlobRef entry with its full path.
func (r *Repo) FlattenTree(h object.Hash) ([]FlatEntry, error) {
	return r.flattenTreeAt(h, "")
}

func (r *Repo) flattenTreeAt(h object.Hash, prefix string) ([]FlatEntry, error) {
	tree, err := r.LoadTree(h)
	if err != nil {
		return nil, err
	}
	var out []FlatEntry
	for _, e := range tree.Entries {
		full := e.Name
		if prefix != "" {
			full = prefix + "/" + e.Name
		}
		switch e.Kind {
		case object.EntryBlobRef:
			out = append(out, FlatEntry{Path: full, Hash: e.Hash})
		case object.EntrySubTree:
			sub, err := r.flattenTreeAt(e.Hash, full)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}
