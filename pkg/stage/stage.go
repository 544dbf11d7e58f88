// Package stage implements Gato's staging pipeline: turning a set of
// working-tree paths into Index entries backed by objects already
// written to the content-addressed store. Small files are staged as
// single Inline blobs; files at or above the chunking threshold are
// split by pkg/chunker and staged as a ChunkList manifest referencing
// per-chunk Inline blobs. Both the set of files and, within a large
// file, the set of chunks are ingested by a small bounded worker pool
// rather than sequentially.
package stage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/odvcencio/gato/pkg/chunker"
	"github.com/odvcencio/gato/pkg/object"
	"github.com/odvcencio/gato/pkg/store"
)

// ChunkThreshold is the file size at and above which a file is run
// through the content-defined chunker instead of being staged as a
// single Inline blob.
const ChunkThreshold = 8 << 20 // 8 MiB

// mmapThreshold is the size above which hybrid reads use a memory map
// instead of a single buffered read.
const mmapThreshold = 16 << 10 // 16 KiB

// EffectiveIgnoreSet returns userIgnore plus the fixed entries every
// repository always excludes: its configuration file and its
// metadata-resolution directory.
func EffectiveIgnoreSet(userIgnore []string, fixed ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(userIgnore)+len(fixed))
	for _, e := range userIgnore {
		if e != "" {
			set[e] = struct{}{}
		}
	}
	for _, e := range fixed {
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// IsIgnored reports whether any component of a forward-slash
// repo-relative path matches an entry in set. Matching is exact
// component equality only — there is no glob support.
func IsIgnored(relPath string, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	for _, part := range strings.Split(relPath, "/") {
		if _, ok := set[part]; ok {
			return true
		}
	}
	return false
}

// Result is the outcome of staging one invocation's worth of paths:
// an updated Index and the paths that were skipped because they
// vanished between enumeration and read.
type Result struct {
	Index   *object.Index
	Skipped []string
}

// Stage ingests paths (files or directories, resolved relative to
// rootDir) into st, merging the result into existing (which may be
// nil, meaning no Index exists yet). Entries are replaced by path;
// deps accumulate as a union.
func Stage(rootDir string, paths []string, ignore map[string]struct{}, level int, st *store.Store, existing *object.Index) (*Result, error) {
	files, err := enumerate(rootDir, paths, ignore)
	if err != nil {
		return nil, fmt.Errorf("stage: enumerate: %w", err)
	}

	type outcome struct {
		path    string
		entry   object.IndexEntry
		deps    []object.Hash
		skipped bool
		err     error
	}

	outcomes := make([]outcome, len(files))
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, relPath := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, relPath string) {
			defer wg.Done()
			defer func() { <-sem }()

			entry, deps, err := ingestFile(rootDir, relPath, level, st, workers)
			if os.IsNotExist(err) {
				outcomes[i] = outcome{path: relPath, skipped: true}
				return
			}
			outcomes[i] = outcome{path: relPath, entry: entry, deps: deps, err: err}
		}(i, relPath)
	}
	wg.Wait()

	idx := existing
	if idx == nil {
		idx = &object.Index{}
	} else {
		idx = cloneIndex(idx)
	}

	var skipped []string
	depSet := make(map[object.Hash]struct{}, len(idx.Deps))
	for _, h := range idx.Deps {
		depSet[h] = struct{}{}
	}

	for _, o := range outcomes {
		if o.err != nil {
			return nil, fmt.Errorf("stage: ingest %q: %w", o.path, o.err)
		}
		if o.skipped {
			skipped = append(skipped, o.path)
			continue
		}
		setEntry(idx, o.path, o.entry)
		for _, h := range o.deps {
			depSet[h] = struct{}{}
		}
	}

	idx.Deps = idx.Deps[:0]
	for h := range depSet {
		idx.Deps = append(idx.Deps, h)
	}
	sort.Slice(idx.Deps, func(i, j int) bool { return idx.Deps[i].String() < idx.Deps[j].String() })

	return &Result{Index: idx, Skipped: skipped}, nil
}

// cloneIndex returns a deep-enough copy of idx so Stage never mutates
// a caller-held Index in place before committing to success.
func cloneIndex(idx *object.Index) *object.Index {
	out := &object.Index{
		Paths:   append([]string(nil), idx.Paths...),
		Entries: append([]object.IndexEntry(nil), idx.Entries...),
		Deps:    append([]object.Hash(nil), idx.Deps...),
	}
	return out
}

// setEntry inserts or replaces the entry for path, keeping Paths
// sorted so Index serialization stays deterministic.
func setEntry(idx *object.Index, path string, entry object.IndexEntry) {
	i := sort.SearchStrings(idx.Paths, path)
	if i < len(idx.Paths) && idx.Paths[i] == path {
		idx.Entries[i] = entry
		return
	}
	idx.Paths = append(idx.Paths, "")
	copy(idx.Paths[i+1:], idx.Paths[i:])
	idx.Paths[i] = path

	idx.Entries = append(idx.Entries, object.IndexEntry{})
	copy(idx.Entries[i+1:], idx.Entries[i:])
	idx.Entries[i] = entry
}

// enumerate walks paths (relative to rootDir), skipping anything with
// an ignored path component, and returns the resulting file list as
// forward-slash paths relative to rootDir, sorted and deduplicated.
func enumerate(rootDir string, paths []string, ignore map[string]struct{}) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	add := func(rel string) {
		if IsIgnored(rel, ignore) {
			return
		}
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		out = append(out, rel)
	}

	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(rootDir, p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", p, err)
		}
		if !info.IsDir() {
			rel, err := filepath.Rel(rootDir, abs)
			if err != nil {
				return nil, fmt.Errorf("relativize %q: %w", p, err)
			}
			add(filepath.ToSlash(rel))
			continue
		}

		err = filepath.WalkDir(abs, func(walkPath string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel, err := filepath.Rel(rootDir, walkPath)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if rel == "." {
				return nil
			}
			if d.IsDir() {
				if IsIgnored(rel, ignore) {
					return fs.SkipDir
				}
				return nil
			}
			add(rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", p, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

// ingestFile stages a single file, returning its Index entry and the
// set of object hashes it introduced.
func ingestFile(rootDir, relPath string, level int, st *store.Store, workers int) (object.IndexEntry, []object.Hash, error) {
	absPath := filepath.Join(rootDir, filepath.FromSlash(relPath))

	info, err := os.Stat(absPath)
	if err != nil {
		return object.IndexEntry{}, nil, err
	}
	size := info.Size()

	base := object.IndexEntry{
		Size:  uint64(size),
		Mtime: uint32(info.ModTime().Unix()),
		Mode:  uint32(info.Mode().Perm()),
	}

	if size < ChunkThreshold {
		raw, err := hybridRead(absPath, size)
		if err != nil {
			return object.IndexEntry{}, nil, err
		}
		blob := &object.Blob{Kind: object.BlobInline, Inline: raw}
		h := object.HashBlob(blob)
		if !st.Has(h) {
			if _, err := st.Put(object.KindBlob, object.MarshalBlob(blob)); err != nil {
				return object.IndexEntry{}, nil, fmt.Errorf("put inline blob: %w", err)
			}
		}
		base.ContentHash = h
		return base, []object.Hash{h}, nil
	}

	raw, err := hybridRead(absPath, size)
	if err != nil {
		return object.IndexEntry{}, nil, err
	}
	chunks := chunker.Cut(raw)
	chunkHashes, err := ingestChunks(chunks, level, st, workers)
	if err != nil {
		return object.IndexEntry{}, nil, err
	}

	manifest := &object.Blob{Kind: object.BlobChunkList, Chunks: chunkHashes}
	contentHash := object.HashBlob(manifest)
	if _, err := st.Put(object.KindBlob, object.MarshalBlob(manifest)); err != nil {
		return object.IndexEntry{}, nil, fmt.Errorf("put chunk-list blob: %w", err)
	}

	base.ContentHash = contentHash
	deps := make([]object.Hash, 0, len(chunkHashes)+1)
	deps = append(deps, contentHash)
	deps = append(deps, chunkHashes...)
	return base, deps, nil
}

// ingestChunks hashes and (for hashes new to the store) compresses
// and writes each chunk in parallel, returning chunk hashes in file
// order.
func ingestChunks(chunks [][]byte, level int, st *store.Store, workers int) ([]object.Hash, error) {
	hashes := make([]object.Hash, len(chunks))
	errs := make([]error, len(chunks))

	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, c := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, data []byte) {
			defer wg.Done()
			defer func() { <-sem }()

			blob := &object.Blob{Kind: object.BlobInline, Inline: data}
			h := object.HashBlob(blob)
			if !st.Has(h) {
				if _, err := st.Put(object.KindBlob, object.MarshalBlob(blob)); err != nil {
					errs[i] = err
					return
				}
			}
			hashes[i] = h
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("put chunk: %w", err)
		}
	}
	return hashes, nil
}
