package stage

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/gato/pkg/object"
	"github.com/odvcencio/gato/pkg/objhash"
	"github.com/odvcencio/gato/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "objects"), objhash.DefaultLevel)
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestStageSmallFileIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", []byte("hello"))
	st := newTestStore(t)

	r1, err := Stage(root, []string{"a.txt"}, nil, objhash.DefaultLevel, st, nil)
	if err != nil {
		t.Fatalf("stage 1: %v", err)
	}
	r2, err := Stage(root, []string{"a.txt"}, nil, objhash.DefaultLevel, st, nil)
	if err != nil {
		t.Fatalf("stage 2: %v", err)
	}

	e1, ok1 := r1.Index.Get("a.txt")
	e2, ok2 := r2.Index.Get("a.txt")
	if !ok1 || !ok2 {
		t.Fatalf("missing index entry: ok1=%v ok2=%v", ok1, ok2)
	}
	if e1.ContentHash != e2.ContentHash {
		t.Fatalf("non-deterministic content hash: %s vs %s", e1.ContentHash, e2.ContentHash)
	}
}

func TestStageDedupesIdenticalContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", []byte("hello"))
	writeFile(t, root, "b.txt", []byte("hello"))
	st := newTestStore(t)

	res, err := Stage(root, []string{"a.txt", "b.txt"}, nil, objhash.DefaultLevel, st, nil)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	ea, _ := res.Index.Get("a.txt")
	eb, _ := res.Index.Get("b.txt")
	if ea.ContentHash != eb.ContentHash {
		t.Fatalf("expected identical content hash, got %s and %s", ea.ContentHash, eb.ContentHash)
	}

	hashes, err := st.ListAll()
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected exactly one object in store, got %d", len(hashes))
	}
}

func TestStageSkipsIgnoredComponents(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, filepath.Join("node_modules", "x.txt"), []byte("dep"))
	writeFile(t, root, "keep.txt", []byte("keep"))
	st := newTestStore(t)

	ignore := EffectiveIgnoreSet([]string{"node_modules"})
	res, err := Stage(root, []string{"."}, ignore, objhash.DefaultLevel, st, nil)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, ok := res.Index.Get("node_modules/x.txt"); ok {
		t.Fatal("expected node_modules/x.txt to be ignored")
	}
	if _, ok := res.Index.Get("keep.txt"); !ok {
		t.Fatal("expected keep.txt to be staged")
	}
}

func TestStageChunkedLargeFileRoundTrips(t *testing.T) {
	root := t.TempDir()
	size := ChunkThreshold + 512*1024
	data := make([]byte, size)
	rand.New(rand.NewSource(42)).Read(data)
	writeFile(t, root, "big.bin", data)
	st := newTestStore(t)

	res, err := Stage(root, []string{"big.bin"}, nil, objhash.DefaultLevel, st, nil)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	entry, ok := res.Index.Get("big.bin")
	if !ok {
		t.Fatal("missing index entry for big.bin")
	}

	_, payload, err := st.Get(entry.ContentHash)
	if err != nil {
		t.Fatalf("get manifest: %v", err)
	}
	manifest, err := object.UnmarshalBlob(payload)
	if err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if manifest.Kind != object.BlobChunkList {
		t.Fatalf("expected ChunkList blob, got kind %d", manifest.Kind)
	}
	if len(manifest.Chunks) < 2 {
		t.Fatalf("expected more than one chunk, got %d", len(manifest.Chunks))
	}

	var reconstructed bytes.Buffer
	for _, h := range manifest.Chunks {
		_, chunkPayload, err := st.Get(h)
		if err != nil {
			t.Fatalf("get chunk %s: %v", h, err)
		}
		chunkBlob, err := object.UnmarshalBlob(chunkPayload)
		if err != nil {
			t.Fatalf("unmarshal chunk %s: %v", h, err)
		}
		reconstructed.Write(chunkBlob.Inline)
	}
	if !bytes.Equal(reconstructed.Bytes(), data) {
		t.Fatal("chunk concatenation did not reproduce original bytes")
	}
}

func TestEnumerateMissingPathErrors(t *testing.T) {
	root := t.TempDir()
	st := newTestStore(t)
	if _, err := Stage(root, []string{"missing.txt"}, nil, objhash.DefaultLevel, st, nil); err == nil {
		t.Fatal("expected error for missing path")
	}
}
