package merge3

import (
	"bytes"
	"strings"
	"testing"
)

func TestMergeBothSidesUnchangedReturnsBase(t *testing.T) {
	base := []byte("a\nb\nc\n")
	res := Merge(base, base, base)
	if res.Conflict {
		t.Fatal("expected no conflict")
	}
	if !bytes.Equal(res.Merged, base) {
		t.Fatalf("got %q, want %q", res.Merged, base)
	}
}

func TestMergeOnlyCurrentChangedTakesCurrent(t *testing.T) {
	base := []byte("a\nb\nc\n")
	current := []byte("a\nx\nc\n")
	res := Merge(base, current, base)
	if res.Conflict {
		t.Fatal("expected no conflict")
	}
	if !bytes.Equal(res.Merged, current) {
		t.Fatalf("got %q, want %q", res.Merged, current)
	}
}

func TestMergeOnlyTargetChangedTakesTarget(t *testing.T) {
	base := []byte("a\nb\nc\n")
	target := []byte("a\ny\nc\n")
	res := Merge(base, base, target)
	if res.Conflict {
		t.Fatal("expected no conflict")
	}
	if !bytes.Equal(res.Merged, target) {
		t.Fatalf("got %q, want %q", res.Merged, target)
	}
}

func TestMergeBothSidesIdenticalChangeIsClean(t *testing.T) {
	base := []byte("a\nb\nc\n")
	changed := []byte("a\nz\nc\n")
	res := Merge(base, changed, changed)
	if res.Conflict {
		t.Fatal("expected no conflict")
	}
	if !bytes.Equal(res.Merged, changed) {
		t.Fatalf("got %q, want %q", res.Merged, changed)
	}
}

func TestMergeConflictingChangesProduceMarkers(t *testing.T) {
	base := []byte("a\nb\nc\n")
	current := []byte("a\nCURRENT\nc\n")
	target := []byte("a\nTARGET\nc\n")

	res := Merge(base, current, target)
	if !res.Conflict {
		t.Fatal("expected conflict")
	}
	out := string(res.Merged)
	if !strings.Contains(out, "<<<<<<< current") || !strings.Contains(out, ">>>>>>> target") {
		t.Fatalf("missing conflict markers in %q", out)
	}
	if !strings.Contains(out, "CURRENT") || !strings.Contains(out, "TARGET") {
		t.Fatalf("missing both sides' content in %q", out)
	}
}

func TestMergeDisjointChangesBothApply(t *testing.T) {
	base := []byte("a\nb\nc\nd\n")
	current := []byte("a\nB\nc\nd\n")
	target := []byte("a\nb\nc\nD\n")

	res := Merge(base, current, target)
	if res.Conflict {
		t.Fatalf("expected no conflict, got %q", res.Merged)
	}
	want := []byte("a\nB\nc\nD\n")
	if !bytes.Equal(res.Merged, want) {
		t.Fatalf("got %q, want %q", res.Merged, want)
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	res := Merge(nil, nil, nil)
	if res.Conflict {
		t.Fatal("expected no conflict")
	}
	if len(res.Merged) != 0 {
		t.Fatalf("expected empty merge, got %q", res.Merged)
	}
}
