package registry

import (
	"testing"
)

func TestList_EmptyWhenAbsent(t *testing.T) {
	paths, err := List(t.TempDir())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("List on fresh store root = %v, want empty", paths)
	}
}

func TestRegister_UnregisterRoundTrip(t *testing.T) {
	root := t.TempDir()

	if err := Register(root, "/repos/a"); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if err := Register(root, "/repos/b"); err != nil {
		t.Fatalf("Register b: %v", err)
	}
	// Registering the same path twice must not duplicate the entry.
	if err := Register(root, "/repos/a"); err != nil {
		t.Fatalf("Register a again: %v", err)
	}

	paths, err := List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("List = %v, want 2 entries", paths)
	}

	if err := Unregister(root, "/repos/a"); err != nil {
		t.Fatalf("Unregister a: %v", err)
	}
	paths, err = List(root)
	if err != nil {
		t.Fatalf("List after unregister: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/repos/b" {
		t.Errorf("List after unregister = %v, want [/repos/b]", paths)
	}
}

func TestUnregister_AbsentIsNoOp(t *testing.T) {
	root := t.TempDir()
	if err := Unregister(root, "/does/not/exist"); err != nil {
		t.Fatalf("Unregister on empty registry: %v", err)
	}
}
