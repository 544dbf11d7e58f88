// Package object defines Gato's persistent object model — Blob, Tree,
// Commit, and Index — and their canonical binary encodings. Every
// encoding is fixed and deterministic: object hashes are computed over
// these exact bytes, so the format can only be extended with new
// tagged variants, never changed in place.
package object

import "github.com/odvcencio/gato/pkg/objhash"

// Hash identifies a persisted object by the Blake3 digest of its
// canonical payload bytes.
type Hash = objhash.Hash

// BlobKind distinguishes the two Blob variants.
type BlobKind uint8

const (
	// BlobInline holds a small file's raw bytes directly.
	BlobInline BlobKind = 0
	// BlobChunkList holds an ordered list of chunk hashes, each of
	// which resolves to an Inline blob in the store.
	BlobChunkList BlobKind = 1
)

// Blob is a tagged value: either Inline raw bytes or an ordered
// ChunkList of chunk hashes.
type Blob struct {
	Kind   BlobKind
	Inline []byte // valid when Kind == BlobInline
	Chunks []Hash // valid when Kind == BlobChunkList, in file order
}

// TreeEntryKind distinguishes a Tree entry's two variants.
type TreeEntryKind uint8

const (
	// EntryBlobRef names a file, referencing a Blob by hash.
	EntryBlobRef TreeEntryKind = 0
	// EntrySubTree names a directory, referencing another Tree.
	EntrySubTree TreeEntryKind = 1
)

// TreeEntry is one named child of a Tree: either a BlobRef(name, H)
// or a SubTree(name, H).
type TreeEntry struct {
	Kind TreeEntryKind
	Name string
	Hash Hash
}

// Tree is a hierarchical snapshot node: a name (empty for the root)
// and its entries.
type Tree struct {
	Name    string
	Entries []TreeEntry
}

// CommitKind distinguishes the Linear and Merge commit variants.
type CommitKind uint8

const (
	// CommitLinear has at most one parent.
	CommitLinear CommitKind = 0
	// CommitMerge has exactly two parents.
	CommitMerge CommitKind = 1
)

// Commit is a tagged, versioned snapshot record. Merge is a distinct
// variant rather than a linear commit with a parent list, keeping the
// hot-path Linear record small and parentage unambiguous.
type Commit struct {
	Kind      CommitKind
	Message   string
	Author    string
	Email     string // optional, empty if unset
	Timestamp int64

	Tree Hash

	// Valid when Kind == CommitLinear.
	Parent    Hash
	HasParent bool

	// Valid when Kind == CommitMerge.
	Parent1 Hash
	Parent2 Hash

	// Deps enumerates every object hash transitively referenced by
	// this commit (tree objects, blobs, chunks), letting GC mark
	// reachability without re-walking tree interiors.
	Deps []Hash
}

// Parents returns the commit's parent hashes in order: one entry for
// a Linear commit with a parent, two for a Merge commit, none for a
// root Linear commit.
func (c *Commit) Parents() []Hash {
	switch c.Kind {
	case CommitMerge:
		return []Hash{c.Parent1, c.Parent2}
	default:
		if c.HasParent {
			return []Hash{c.Parent}
		}
		return nil
	}
}

// IndexEntry is the staged metadata for one working-tree file.
type IndexEntry struct {
	Size        uint64
	Mtime       uint32
	Mode        uint32
	ContentHash Hash
}

// Index is the staging area: a path-sorted map of entries plus the
// set of object hashes introduced by staging them. Exactly one Index
// exists per repository, and only between a stage and the following
// commit.
type Index struct {
	Paths   []string // sorted, parallel to Entries
	Entries []IndexEntry
	Deps    []Hash
}

// Get returns the entry for path and whether it was present.
func (idx *Index) Get(path string) (IndexEntry, bool) {
	for i, p := range idx.Paths {
		if p == path {
			return idx.Entries[i], true
		}
	}
	return IndexEntry{}, false
}
