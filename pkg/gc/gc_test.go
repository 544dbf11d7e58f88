package gc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/gato/pkg/gatoconfig"
	"github.com/odvcencio/gato/pkg/object"
	"github.com/odvcencio/gato/pkg/repo"
)

func newTestRepo(t *testing.T, storeRoot string) *repo.Repo {
	t.Helper()
	workDir := t.TempDir()
	cfg := gatoconfig.Config{Title: "t", Author: "a", Description: "d"}
	r, err := repo.Init(workDir, storeRoot, cfg)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeAndCommit(t *testing.T, r *repo.Repo, rel, content, message string) {
	t.Helper()
	full := filepath.Join(r.WorkDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	if _, err := r.Stage([]string{rel}); err != nil {
		t.Fatalf("stage %s: %v", rel, err)
	}
	if _, err := r.Commit(message); err != nil {
		t.Fatalf("commit %s: %v", message, err)
	}
}

// Scenario 6 from spec §8: a deleted branch's unique content is swept,
// content still reachable from a surviving branch is kept.
func TestGC_SweepsUnreachableContent(t *testing.T) {
	storeRoot := t.TempDir()
	r := newTestRepo(t, storeRoot)

	writeAndCommit(t, r, "a.txt", "content-a", "add a")

	if err := r.NewBranch("tmp"); err != nil {
		t.Fatalf("NewBranch: %v", err)
	}
	if err := r.SwitchBranch("tmp"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	writeAndCommit(t, r, "b.txt", "content-b", "add b on tmp")

	if err := r.SwitchBranch(repo.DefaultBranch); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	if err := r.DeleteBranch("tmp"); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}

	blobA := hashInlineBlob(t, "content-a")
	blobB := hashInlineBlob(t, "content-b")

	if !r.Store.Has(blobA) {
		t.Fatal("blob a missing before gc")
	}
	if !r.Store.Has(blobB) {
		t.Fatal("blob b missing before gc")
	}

	result, err := Run(storeRoot)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Swept == 0 {
		t.Error("expected gc to sweep at least the orphaned branch's objects")
	}

	if r.Store.Has(blobB) {
		t.Error("blob b should have been swept after its only branch was deleted")
	}
	if !r.Store.Has(blobA) {
		t.Error("blob a should remain reachable from master")
	}
}

func TestGC_BlockedByPendingIndex(t *testing.T) {
	storeRoot := t.TempDir()
	r := newTestRepo(t, storeRoot)
	writeAndCommit(t, r, "a.txt", "v1", "initial")

	if err := os.WriteFile(filepath.Join(r.WorkDir, "b.txt"), []byte("pending"), 0o644); err != nil {
		t.Fatalf("write b.txt: %v", err)
	}
	if _, err := r.Stage([]string{"b.txt"}); err != nil {
		t.Fatalf("stage b.txt: %v", err)
	}

	if _, err := Run(storeRoot); !errors.Is(err, ErrBlocked) {
		t.Fatalf("Run with a pending index: err = %v, want ErrBlocked", err)
	}
}

func hashInlineBlob(t *testing.T, content string) object.Hash {
	t.Helper()
	return object.HashBlob(&object.Blob{Kind: object.BlobInline, Inline: []byte(content)})
}
