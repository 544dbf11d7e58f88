package object

import (
	"testing"

	"github.com/odvcencio/gato/pkg/objhash"
)

func TestBlobInlineRoundTrip(t *testing.T) {
	b := &Blob{Kind: BlobInline, Inline: []byte("hello, gato")}
	decoded, err := UnmarshalBlob(MarshalBlob(b))
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if decoded.Kind != BlobInline || string(decoded.Inline) != string(b.Inline) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestBlobChunkListRoundTrip(t *testing.T) {
	b := &Blob{Kind: BlobChunkList, Chunks: []Hash{
		hashOf("a"), hashOf("b"), hashOf("c"),
	}}
	decoded, err := UnmarshalBlob(MarshalBlob(b))
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if decoded.Kind != BlobChunkList || len(decoded.Chunks) != 3 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	for i, h := range b.Chunks {
		if decoded.Chunks[i] != h {
			t.Fatalf("chunk %d mismatch", i)
		}
	}
}

func TestHashBlobDistinguishesVariants(t *testing.T) {
	inline := &Blob{Kind: BlobInline, Inline: []byte{0x01}}
	list := &Blob{Kind: BlobChunkList, Chunks: []Hash{hashOf("x")}}
	if HashBlob(inline) == HashBlob(list) {
		t.Fatalf("distinct blob variants hashed identically")
	}
}

func TestTreeRoundTrip(t *testing.T) {
	tree := &Tree{Entries: []TreeEntry{
		{Kind: EntryBlobRef, Name: "README.md", Hash: hashOf("readme")},
		{Kind: EntrySubTree, Name: "src", Hash: hashOf("src-tree")},
	}}
	decoded, err := UnmarshalTree(MarshalTree(tree))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(decoded.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(decoded.Entries))
	}
	for i, e := range tree.Entries {
		got := decoded.Entries[i]
		if got.Kind != e.Kind || got.Name != e.Name || got.Hash != e.Hash {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, got, e)
		}
	}
}

func TestCommitLinearRoundTrip(t *testing.T) {
	c := &Commit{
		Kind:      CommitLinear,
		Message:   "initial commit",
		Author:    "ada",
		Email:     "ada@example.com",
		Timestamp: 1700000000,
		Tree:      hashOf("tree"),
		Parent:    hashOf("parent"),
		HasParent: true,
		Deps:      []Hash{hashOf("tree"), hashOf("blob")},
	}
	decoded, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if decoded.Message != c.Message || decoded.Author != c.Author || decoded.Email != c.Email {
		t.Fatalf("field mismatch: %+v", decoded)
	}
	if decoded.Timestamp != c.Timestamp || decoded.Tree != c.Tree {
		t.Fatalf("field mismatch: %+v", decoded)
	}
	if !decoded.HasParent || decoded.Parent != c.Parent {
		t.Fatalf("parent mismatch: %+v", decoded)
	}
	if len(decoded.Deps) != 2 {
		t.Fatalf("deps mismatch: %+v", decoded.Deps)
	}
}

func TestCommitRootHasNoParent(t *testing.T) {
	c := &Commit{Kind: CommitLinear, Message: "root", Tree: hashOf("tree")}
	decoded, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if decoded.HasParent {
		t.Fatalf("expected root commit to decode with no parent")
	}
	if len(decoded.Parents()) != 0 {
		t.Fatalf("expected Parents() to be empty for a root commit")
	}
}

func TestCommitMergeRoundTrip(t *testing.T) {
	c := &Commit{
		Kind:    CommitMerge,
		Message: "merge branch b into a",
		Tree:    hashOf("merged-tree"),
		Parent1: hashOf("a"),
		Parent2: hashOf("b"),
	}
	decoded, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	parents := decoded.Parents()
	if len(parents) != 2 || parents[0] != c.Parent1 || parents[1] != c.Parent2 {
		t.Fatalf("Parents() = %v, want [%s %s]", parents, c.Parent1, c.Parent2)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	idx := &Index{
		Paths: []string{"a.txt", "b.txt"},
		Entries: []IndexEntry{
			{Size: 10, Mtime: 111, Mode: 0644, ContentHash: hashOf("a")},
			{Size: 20, Mtime: 222, Mode: 0644, ContentHash: hashOf("b")},
		},
		Deps: []Hash{hashOf("a"), hashOf("b")},
	}
	decoded, err := UnmarshalIndex(MarshalIndex(idx))
	if err != nil {
		t.Fatalf("UnmarshalIndex: %v", err)
	}
	entry, ok := decoded.Get("b.txt")
	if !ok {
		t.Fatalf("expected b.txt to be present")
	}
	if entry.Size != 20 || entry.ContentHash != hashOf("b") {
		t.Fatalf("entry mismatch: %+v", entry)
	}
	if _, ok := decoded.Get("missing.txt"); ok {
		t.Fatalf("expected missing.txt to be absent")
	}
}

func hashOf(s string) Hash {
	return objhash.Sum([]byte(s))
}
