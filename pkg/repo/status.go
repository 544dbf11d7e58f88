package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gato/pkg/chunker"
	"github.com/odvcencio/gato/pkg/gatoconfig"
	"github.com/odvcencio/gato/pkg/object"
	"github.com/odvcencio/gato/pkg/stage"
)

// FileStatus classifies a working-tree file relative to the pending
// index and HEAD's tree.
type FileStatus int

const (
	Unmodified FileStatus = iota
	Staged
	StagedButModified
	Untracked
)

func (s FileStatus) String() string {
	switch s {
	case Unmodified:
		return "unmodified"
	case Staged:
		return "staged"
	case StagedButModified:
		return "staged-but-modified"
	case Untracked:
		return "untracked"
	default:
		return "unknown"
	}
}

// StatusEntry reports one working-tree file's classification.
type StatusEntry struct {
	Path   string
	Status FileStatus
}

// Status walks the working tree (after ignore filtering) and
// classifies every file without writing any new objects.
func (r *Repo) Status() ([]StatusEntry, error) {
	ignore := stage.EffectiveIgnoreSet(r.Config.Ignore, gatoconfig.FileName, metaDirName)

	var headEntries map[string]object.Hash
	if active, err := r.Head(); err == nil {
		if tip, err := r.ReadRef(active); err == nil {
			commit, err := r.LoadCommit(tip)
			if err != nil {
				return nil, fmt.Errorf("repo: status: load HEAD commit: %w", err)
			}
			flat, err := r.FlattenTree(commit.Tree)
			if err != nil {
				return nil, fmt.Errorf("repo: status: flatten HEAD tree: %w", err)
			}
			headEntries = make(map[string]object.Hash, len(flat))
			for _, e := range flat {
				headEntries[e.Path] = e.Hash
			}
		}
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("repo: status: %w", err)
	}

	paths, err := walkWorkTree(r.WorkDir, ignore)
	if err != nil {
		return nil, fmt.Errorf("repo: status: %w", err)
	}

	var out []StatusEntry
	for _, p := range paths {
		h, err := wouldBeContentHash(r.WorkDir, p)
		if err != nil {
			return nil, fmt.Errorf("repo: status %q: %w", p, err)
		}

		if idx != nil {
			if e, ok := idx.Get(p); ok {
				if e.ContentHash == h {
					out = append(out, StatusEntry{Path: p, Status: Staged})
				} else {
					out = append(out, StatusEntry{Path: p, Status: StagedButModified})
				}
				continue
			}
		}
		if headHash, ok := headEntries[p]; ok && headHash == h {
			out = append(out, StatusEntry{Path: p, Status: Unmodified})
			continue
		}
		out = append(out, StatusEntry{Path: p, Status: Untracked})
	}
	return out, nil
}

func walkWorkTree(rootDir string, ignore map[string]struct{}) ([]string, error) {
	var out []string
	err := filepath.WalkDir(rootDir, func(walkPath string, d os.DirEntry, walkErr error) error {
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
			if stage.IsIgnored(rel, ignore) {
				return filepath.SkipDir
			}
			return nil
		}
		if stage.IsIgnored(rel, ignore) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// wouldBeContentHash computes the content hash a file would receive
// if staged right now, without storing anything.
func wouldBeContentHash(rootDir, relPath string) (object.Hash, error) {
	full := filepath.Join(rootDir, filepath.FromSlash(relPath))
	info, err := os.Stat(full)
	if err != nil {
		return object.Hash{}, err
	}
	if info.Size() < stage.ChunkThreshold {
		data, err := os.ReadFile(full)
		if err != nil {
			return object.Hash{}, err
		}
		return hashBlobBytes(data), nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return object.Hash{}, err
	}
	chunks := chunker.Cut(data)
	hashes := make([]object.Hash, len(chunks))
	for i, c := range chunks {
		hashes[i] = hashBlobBytes(c)
	}
	manifest := &object.Blob{Kind: object.BlobChunkList, Chunks: hashes}
	return object.HashBlob(manifest), nil
}
