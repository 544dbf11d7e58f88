package object

import (
	"encoding/binary"
	"fmt"

	"github.com/odvcencio/gato/pkg/objhash"
)

// Every Marshal function here produces the exact bytes an object's
// hash is computed over. There is no store-level envelope in this
// package: the byte that tells the store whether it is holding a
// Blob, Tree, Commit, or Index lives one layer up, in pkg/store, and
// is deliberately excluded from these bytes so that hashing an object
// twice — once freshly built, once read back out of the store — never
// depends on how the store chose to tag it on disk.

func putUvarint(buf []byte, v uint64) []byte {
	tmp := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(tmp, v)
	return append(buf, tmp[:n]...)
}

func putString(buf []byte, s string) []byte {
	buf = putUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func putHash(buf []byte, h Hash) []byte {
	return append(buf, h[:]...)
}

func takeUvarint(data []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, fmt.Errorf("object: truncated varint")
	}
	return v, data[n:], nil
}

func takeString(data []byte) (string, []byte, error) {
	n, rest, err := takeUvarint(data)
	if err != nil {
		return "", nil, err
	}
	if uint64(len(rest)) < n {
		return "", nil, fmt.Errorf("object: truncated string field")
	}
	return string(rest[:n]), rest[n:], nil
}

func takeHash(data []byte) (Hash, []byte, error) {
	var h Hash
	if len(data) < len(h) {
		return h, nil, fmt.Errorf("object: truncated hash field")
	}
	copy(h[:], data[:len(h)])
	return h, data[len(h):], nil
}

// MarshalBlob encodes b as kind-tagged bytes: a single kind byte
// followed by the raw payload (Inline) or a count-prefixed run of
// chunk hashes (ChunkList).
func MarshalBlob(b *Blob) []byte {
	switch b.Kind {
	case BlobChunkList:
		buf := []byte{byte(BlobChunkList)}
		buf = putUvarint(buf, uint64(len(b.Chunks)))
		for _, h := range b.Chunks {
			buf = putHash(buf, h)
		}
		return buf
	default:
		buf := make([]byte, 0, len(b.Inline)+1)
		buf = append(buf, byte(BlobInline))
		return append(buf, b.Inline...)
	}
}

// UnmarshalBlob decodes bytes produced by MarshalBlob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("object: empty blob encoding")
	}
	kind, rest := BlobKind(data[0]), data[1:]
	switch kind {
	case BlobInline:
		return &Blob{Kind: BlobInline, Inline: append([]byte(nil), rest...)}, nil
	case BlobChunkList:
		count, rest, err := takeUvarint(rest)
		if err != nil {
			return nil, fmt.Errorf("object: blob chunk count: %w", err)
		}
		chunks := make([]Hash, 0, count)
		for i := uint64(0); i < count; i++ {
			var h Hash
			h, rest, err = takeHash(rest)
			if err != nil {
				return nil, fmt.Errorf("object: blob chunk %d: %w", i, err)
			}
			chunks = append(chunks, h)
		}
		return &Blob{Kind: BlobChunkList, Chunks: chunks}, nil
	default:
		return nil, fmt.Errorf("object: unknown blob kind %d", kind)
	}
}

// HashBlob returns the content hash of b's canonical encoding.
func HashBlob(b *Blob) Hash {
	return objhash.Sum(MarshalBlob(b))
}

// MarshalTree encodes t as a count-prefixed run of entries, each a
// kind byte, a length-prefixed name, and a hash. Entries must already
// be sorted by name; MarshalTree does not sort them, since a caller
// that builds entries out of order has a different bug worth
// surfacing rather than silently masking.
func MarshalTree(t *Tree) []byte {
	buf := putUvarint(nil, uint64(len(t.Entries)))
	for _, e := range t.Entries {
		buf = append(buf, byte(e.Kind))
		buf = putString(buf, e.Name)
		buf = putHash(buf, e.Hash)
	}
	return buf
}

// UnmarshalTree decodes bytes produced by MarshalTree. The returned
// Tree's Name is always empty; a tree object carries no memory of the
// name under which its parent referenced it.
func UnmarshalTree(data []byte) (*Tree, error) {
	count, rest, err := takeUvarint(data)
	if err != nil {
		return nil, fmt.Errorf("object: tree entry count: %w", err)
	}
	entries := make([]TreeEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(rest) < 1 {
			return nil, fmt.Errorf("object: tree entry %d: truncated", i)
		}
		kind := TreeEntryKind(rest[0])
		rest = rest[1:]

		var name string
		name, rest, err = takeString(rest)
		if err != nil {
			return nil, fmt.Errorf("object: tree entry %d name: %w", i, err)
		}
		var h Hash
		h, rest, err = takeHash(rest)
		if err != nil {
			return nil, fmt.Errorf("object: tree entry %d hash: %w", i, err)
		}
		entries = append(entries, TreeEntry{Kind: kind, Name: name, Hash: h})
	}
	return &Tree{Entries: entries}, nil
}

// HashTree returns the content hash of t's canonical encoding.
func HashTree(t *Tree) Hash {
	return objhash.Sum(MarshalTree(t))
}

// MarshalCommit encodes c per its Kind: a kind byte, message,
// author, email, a big-endian timestamp, the tree hash, the parents
// (Linear: a presence byte and, if set, one parent hash; Merge: two
// parent hashes), and the dependency-hash set.
func MarshalCommit(c *Commit) []byte {
	buf := []byte{byte(c.Kind)}
	buf = putString(buf, c.Message)
	buf = putString(buf, c.Author)
	buf = putString(buf, c.Email)

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(c.Timestamp))
	buf = append(buf, ts[:]...)

	buf = putHash(buf, c.Tree)

	switch c.Kind {
	case CommitMerge:
		buf = putHash(buf, c.Parent1)
		buf = putHash(buf, c.Parent2)
	default:
		if c.HasParent {
			buf = append(buf, 1)
			buf = putHash(buf, c.Parent)
		} else {
			buf = append(buf, 0)
		}
	}

	buf = putUvarint(buf, uint64(len(c.Deps)))
	for _, h := range c.Deps {
		buf = putHash(buf, h)
	}
	return buf
}

// UnmarshalCommit decodes bytes produced by MarshalCommit.
func UnmarshalCommit(data []byte) (*Commit, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("object: empty commit encoding")
	}
	c := &Commit{Kind: CommitKind(data[0])}
	rest := data[1:]

	var err error
	if c.Message, rest, err = takeString(rest); err != nil {
		return nil, fmt.Errorf("object: commit message: %w", err)
	}
	if c.Author, rest, err = takeString(rest); err != nil {
		return nil, fmt.Errorf("object: commit author: %w", err)
	}
	if c.Email, rest, err = takeString(rest); err != nil {
		return nil, fmt.Errorf("object: commit email: %w", err)
	}
	if len(rest) < 8 {
		return nil, fmt.Errorf("object: commit timestamp: truncated")
	}
	c.Timestamp = int64(binary.BigEndian.Uint64(rest[:8]))
	rest = rest[8:]

	if c.Tree, rest, err = takeHash(rest); err != nil {
		return nil, fmt.Errorf("object: commit tree: %w", err)
	}

	switch c.Kind {
	case CommitMerge:
		if c.Parent1, rest, err = takeHash(rest); err != nil {
			return nil, fmt.Errorf("object: commit parent1: %w", err)
		}
		if c.Parent2, rest, err = takeHash(rest); err != nil {
			return nil, fmt.Errorf("object: commit parent2: %w", err)
		}
	default:
		if len(rest) < 1 {
			return nil, fmt.Errorf("object: commit parent flag: truncated")
		}
		hasParent := rest[0] != 0
		rest = rest[1:]
		if hasParent {
			c.HasParent = true
			if c.Parent, rest, err = takeHash(rest); err != nil {
				return nil, fmt.Errorf("object: commit parent: %w", err)
			}
		}
	}

	count, rest, err := takeUvarint(rest)
	if err != nil {
		return nil, fmt.Errorf("object: commit deps count: %w", err)
	}
	deps := make([]Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		var h Hash
		h, rest, err = takeHash(rest)
		if err != nil {
			return nil, fmt.Errorf("object: commit dep %d: %w", i, err)
		}
		deps = append(deps, h)
	}
	c.Deps = deps
	return c, nil
}

// HashCommit returns the content hash of c's canonical encoding.
func HashCommit(c *Commit) Hash {
	return objhash.Sum(MarshalCommit(c))
}

// MarshalIndex encodes idx as a count-prefixed run of (path, entry)
// pairs followed by the dependency-hash set.
func MarshalIndex(idx *Index) []byte {
	buf := putUvarint(nil, uint64(len(idx.Paths)))
	for i, path := range idx.Paths {
		e := idx.Entries[i]
		buf = putString(buf, path)
		buf = putUvarint(buf, e.Size)
		buf = putUvarint(buf, uint64(e.Mtime))
		buf = putUvarint(buf, uint64(e.Mode))
		buf = putHash(buf, e.ContentHash)
	}
	buf = putUvarint(buf, uint64(len(idx.Deps)))
	for _, h := range idx.Deps {
		buf = putHash(buf, h)
	}
	return buf
}

// UnmarshalIndex decodes bytes produced by MarshalIndex.
func UnmarshalIndex(data []byte) (*Index, error) {
	count, rest, err := takeUvarint(data)
	if err != nil {
		return nil, fmt.Errorf("object: index entry count: %w", err)
	}
	idx := &Index{
		Paths:   make([]string, 0, count),
		Entries: make([]IndexEntry, 0, count),
	}
	for i := uint64(0); i < count; i++ {
		var path string
		path, rest, err = takeString(rest)
		if err != nil {
			return nil, fmt.Errorf("object: index entry %d path: %w", i, err)
		}
		var size, mtime, mode uint64
		if size, rest, err = takeUvarint(rest); err != nil {
			return nil, fmt.Errorf("object: index entry %d size: %w", i, err)
		}
		if mtime, rest, err = takeUvarint(rest); err != nil {
			return nil, fmt.Errorf("object: index entry %d mtime: %w", i, err)
		}
		if mode, rest, err = takeUvarint(rest); err != nil {
			return nil, fmt.Errorf("object: index entry %d mode: %w", i, err)
		}
		var h Hash
		h, rest, err = takeHash(rest)
		if err != nil {
			return nil, fmt.Errorf("object: index entry %d hash: %w", i, err)
		}
		idx.Paths = append(idx.Paths, path)
		idx.Entries = append(idx.Entries, IndexEntry{
			Size: size, Mtime: uint32(mtime), Mode: uint32(mode), ContentHash: h,
		})
	}

	depCount, rest, err := takeUvarint(rest)
	if err != nil {
		return nil, fmt.Errorf("object: index deps count: %w", err)
	}
	deps := make([]Hash, 0, depCount)
	for i := uint64(0); i < depCount; i++ {
		var h Hash
		h, rest, err = takeHash(rest)
		if err != nil {
			return nil, fmt.Errorf("object: index dep %d: %w", i, err)
		}
		deps = append(deps, h)
	}
	idx.Deps = deps
	return idx, nil
}
