package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gato/pkg/object"
)

// Checkout resolves the commit at offset n from the active branch's
// tip and restores every file in its root tree into the working
// directory. It does not remove working-tree files absent from the
// target tree.
func (r *Repo) Checkout(n int) error {
	target, err := r.LoadByOffset(n)
	if err != nil {
		return fmt.Errorf("repo: checkout: %w", err)
	}
	commit, err := r.LoadCommit(target)
	if err != nil {
		return fmt.Errorf("repo: checkout: %w", err)
	}
	entries, err := r.FlattenTree(commit.Tree)
	if err != nil {
		return fmt.Errorf("repo: checkout: %w", err)
	}
	for _, e := range entries {
		if err := r.restoreBlob(e.Path, e.Hash); err != nil {
			return fmt.Errorf("repo: checkout %q: %w", e.Path, err)
		}
	}
	return nil
}

// restoreBlob writes the content addressed by h to relPath under the
// working directory.
func (r *Repo) restoreBlob(relPath string, h object.Hash) error {
	data, err := r.ReadBlob(h)
	if err != nil {
		return err
	}
	full := filepath.Join(r.WorkDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(full, data, 0o644)
}

// ReadBlob resolves the blob at h to its full content, restoring an
// Inline blob directly or streaming and concatenating a ChunkList's
// chunks in order.
func (r *Repo) ReadBlob(h object.Hash) ([]byte, error) {
	kind, payload, err := r.Store.Get(h)
	if err != nil {
		return nil, fmt.Errorf("repo: read blob %s: %w", h, err)
	}
	if kind != object.KindBlob {
		return nil, fmt.Errorf("repo: read blob %s: unexpected kind %d", h, kind)
	}
	blob, err := object.UnmarshalBlob(payload)
	if err != nil {
		return nil, fmt.Errorf("repo: read blob %s: %w", h, err)
	}

	switch blob.Kind {
	case object.BlobInline:
		return blob.Inline, nil
	case object.BlobChunkList:
		var out []byte
		for _, ch := range blob.Chunks {
			chunkKind, chunkPayload, err := r.Store.Get(ch)
			if err != nil {
				return nil, fmt.Errorf("repo: read chunk %s: %w", ch, err)
			}
			if chunkKind != object.KindBlob {
				return nil, fmt.Errorf("repo: read chunk %s: unexpected kind %d", ch, chunkKind)
			}
			chunkBlob, err := object.UnmarshalBlob(chunkPayload)
			if err != nil {
				return nil, fmt.Errorf("repo: read chunk %s: %w", ch, err)
			}
			out = append(out, chunkBlob.Inline...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("repo: read blob %s: unknown blob kind %d", h, blob.Kind)
	}
}

// putInlineBlob stores data as a new Inline blob if its hash is not
// already present, returning its hash.
func (r *Repo) putInlineBlob(data []byte) (object.Hash, error) {
	blob := &object.Blob{Kind: object.BlobInline, Inline: data}
	h := object.HashBlob(blob)
	if !r.Store.Has(h) {
		if _, err := r.Store.Put(object.KindBlob, object.MarshalBlob(blob)); err != nil {
			return object.Hash{}, err
		}
	}
	return h, nil
}

// hashBlobBytes computes what an Inline blob's content hash would be
// without storing anything, for use by Status.
func hashBlobBytes(data []byte) object.Hash {
	blob := &object.Blob{Kind: object.BlobInline, Inline: data}
	return object.HashBlob(blob)
}
