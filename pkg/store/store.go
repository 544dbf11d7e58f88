// Package store implements the content-addressed object store:
// compressed, envelope-tagged bytes fanned out into two-character
// hex subdirectories under an objects root, written atomically via a
// temp file and rename.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gato/pkg/object"
	"github.com/odvcencio/gato/pkg/objhash"
)

// ErrNotFound is returned by Get when no object with the given hash
// is present.
var ErrNotFound = errors.New("store: object not found")

// Store is a directory of content-addressed, zstd-compressed
// objects rooted at Dir (typically "<store root>/objects").
type Store struct {
	Dir   string
	Level int
}

// New returns a Store rooted at dir, compressing future writes at
// the given zstd level.
func New(dir string, level int) *Store {
	return &Store{Dir: dir, Level: level}
}

func (s *Store) path(h object.Hash) string {
	hex := h.String()
	return filepath.Join(s.Dir, hex[:2], hex[2:])
}

// Has reports whether an object with hash h is already present,
// without reading or decompressing it.
func (s *Store) Has(h object.Hash) bool {
	_, err := os.Stat(s.path(h))
	return err == nil
}

// Put stores payload (the object's canonical, hash-relevant bytes)
// under the given store kind, returning its content hash. Put is
// idempotent: if the object is already present, it is not rewritten.
func (s *Store) Put(kind object.Kind, payload []byte) (object.Hash, error) {
	h := objhash.Sum(payload)
	if s.Has(h) {
		return h, nil
	}

	compressed, err := objhash.Compress(payload, s.Level)
	if err != nil {
		return h, fmt.Errorf("store: compress %s: %w", h, err)
	}
	envelope := append([]byte{byte(kind)}, compressed...)

	dir := filepath.Dir(s.path(h))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return h, fmt.Errorf("store: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return h, fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(envelope); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return h, fmt.Errorf("store: write %s: %w", h, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return h, fmt.Errorf("store: close %s: %w", h, err)
	}
	if err := os.Rename(tmpName, s.path(h)); err != nil {
		os.Remove(tmpName)
		return h, fmt.Errorf("store: rename into place %s: %w", h, err)
	}
	return h, nil
}

// Get reads back the canonical payload bytes stored under h, along
// with the object kind it was written as.
func (s *Store) Get(h object.Hash) (object.Kind, []byte, error) {
	raw, err := os.ReadFile(s.path(h))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, ErrNotFound
		}
		return 0, nil, fmt.Errorf("store: read %s: %w", h, err)
	}
	if len(raw) < 1 {
		return 0, nil, fmt.Errorf("store: %s: empty envelope", h)
	}
	kind := object.Kind(raw[0])
	payload, err := objhash.Decompress(raw[1:])
	if err != nil {
		return 0, nil, fmt.Errorf("store: decompress %s: %w", h, err)
	}
	return kind, payload, nil
}

// ListAll returns every object hash present in the store, used by
// cross-repository garbage collection to compute the sweep set.
func (s *Store) ListAll() ([]object.Hash, error) {
	var hashes []object.Hash
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: list %s: %w", s.Dir, err)
	}
	for _, fanout := range entries {
		if !fanout.IsDir() || len(fanout.Name()) != 2 {
			continue
		}
		subDir := filepath.Join(s.Dir, fanout.Name())
		subEntries, err := os.ReadDir(subDir)
		if err != nil {
			return nil, fmt.Errorf("store: list %s: %w", subDir, err)
		}
		for _, f := range subEntries {
			h, err := objhash.ParseHash(fanout.Name() + f.Name())
			if err != nil {
				continue
			}
			hashes = append(hashes, h)
		}
	}
	return hashes, nil
}

// Delete removes the object with hash h. It is not an error to
// delete an object that is not present.
func (s *Store) Delete(h object.Hash) error {
	err := os.Remove(s.path(h))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete %s: %w", h, err)
	}
	return nil
}
