// Package repo ties together the object store, staging pipeline, and
// branch refs into an opened Gato repository: it resolves a working
// directory to its shared store root, builds and walks commit
// history, restores trees to disk, and reconciles three-way merges.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/odvcencio/gato/pkg/gatoconfig"
	"github.com/odvcencio/gato/pkg/object"
	"github.com/odvcencio/gato/pkg/registry"
	"github.com/odvcencio/gato/pkg/store"
)

// metaDirName is the per-workdir directory that locates the shared
// store root; it contains a single "storeroot" file holding the
// absolute path to the store.
const metaDirName = ".gato"

// DefaultBranch is the branch HEAD points to immediately after Init.
const DefaultBranch = "master"

var (
	ErrAlreadyInitialized = errors.New("repo: already initialized")
	ErrNotARepo           = errors.New("repo: not a gato repository (or any parent)")
)

// Repo is an opened Gato repository: a working directory bound to a
// shared object store, identified by the UUID v7 recorded in its
// configuration.
type Repo struct {
	WorkDir   string
	StoreRoot string
	ID        uuid.UUID
	RepoDir   string // <StoreRoot>/<ID>
	Config    *gatoconfig.Config
	Store     *store.Store
}

// Init creates a new repository at workDir backed by storeRoot. It
// fails if workDir already has a metadata directory. cfg supplies the
// required configuration fields except ID, which Init assigns.
func Init(workDir, storeRoot string, cfg gatoconfig.Config) (*Repo, error) {
	metaDir := filepath.Join(workDir, metaDirName)
	if _, err := os.Stat(metaDir); err == nil {
		return nil, ErrAlreadyInitialized
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("repo: generate id: %w", err)
	}
	cfg.ID = id.String()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("repo: %w", err)
	}

	repoDir := filepath.Join(storeRoot, id.String())
	dirs := []string{
		filepath.Join(storeRoot, "objects"),
		filepath.Join(repoDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("repo: mkdir %s: %w", d, err)
		}
	}
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return nil, fmt.Errorf("repo: mkdir %s: %w", metaDir, err)
	}

	if err := writeFileAtomic(filepath.Join(metaDir, "storeroot"), []byte(storeRoot), 0o644); err != nil {
		return nil, fmt.Errorf("repo: write storeroot pointer: %w", err)
	}
	if err := gatoconfig.Save(workDir, &cfg); err != nil {
		return nil, fmt.Errorf("repo: save config: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(repoDir, "HEAD"), []byte(DefaultBranch), 0o644); err != nil {
		return nil, fmt.Errorf("repo: write HEAD: %w", err)
	}

	if err := registry.Register(storeRoot, workDir); err != nil {
		return nil, fmt.Errorf("repo: register: %w", err)
	}

	r := &Repo{
		WorkDir:   workDir,
		StoreRoot: storeRoot,
		ID:        id,
		RepoDir:   repoDir,
		Config:    &cfg,
		Store:     store.New(filepath.Join(storeRoot, "objects"), cfg.Level()),
	}
	return r, nil
}

// Open locates an existing repository by searching workDir and its
// parents for a metadata directory, then loads its configuration and
// binds to its store root.
func Open(workDir string) (*Repo, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("repo: abs path: %w", err)
	}

	cur := abs
	for {
		metaDir := filepath.Join(cur, metaDirName)
		info, err := os.Stat(metaDir)
		if err == nil && info.IsDir() {
			return openAt(cur, metaDir)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, ErrNotARepo
		}
		cur = parent
	}
}

func openAt(workDir, metaDir string) (*Repo, error) {
	rootBytes, err := os.ReadFile(filepath.Join(metaDir, "storeroot"))
	if err != nil {
		return nil, fmt.Errorf("repo: read storeroot pointer: %w", err)
	}
	storeRoot := string(rootBytes)

	cfg, err := gatoconfig.Load(workDir)
	if err != nil {
		return nil, fmt.Errorf("repo: load config: %w", err)
	}
	id, err := uuid.Parse(cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("repo: parse id: %w", err)
	}

	return &Repo{
		WorkDir:   workDir,
		StoreRoot: storeRoot,
		ID:        id,
		RepoDir:   filepath.Join(storeRoot, id.String()),
		Config:    cfg,
		Store:     store.New(filepath.Join(storeRoot, "objects"), cfg.Level()),
	}, nil
}

// IndexPath returns the path of the pending staging index, present
// only between stage and commit.
func (r *Repo) IndexPath() string {
	return filepath.Join(r.RepoDir, "index")
}

// LoadIndex reads the pending staging index, returning (nil, nil) if
// none exists.
func (r *Repo) LoadIndex() (*object.Index, error) {
	data, err := os.ReadFile(r.IndexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo: read index: %w", err)
	}
	idx, err := object.UnmarshalIndex(data)
	if err != nil {
		return nil, fmt.Errorf("repo: decode index: %w", err)
	}
	return idx, nil
}

// SaveIndex writes idx atomically as the pending staging index.
func (r *Repo) SaveIndex(idx *object.Index) error {
	return writeFileAtomic(r.IndexPath(), object.MarshalIndex(idx), 0o644)
}

// DeleteIndex removes the pending staging index, e.g. after a
// successful commit.
func (r *Repo) DeleteIndex() error {
	err := os.Remove(r.IndexPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("repo: delete index: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to path via a temp file in the same
// directory followed by rename, so readers never observe a partial
// write.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// DeleteRepo unregisters the repository from its store root, removes
// its refs/index directory under the shared store, and removes the
// working directory's metadata directory. The working directory's
// tracked files and configuration file are left untouched.
func (r *Repo) DeleteRepo() error {
	if err := registry.Unregister(r.StoreRoot, r.WorkDir); err != nil {
		return fmt.Errorf("repo: delete repo: unregister: %w", err)
	}
	if err := os.RemoveAll(r.RepoDir); err != nil {
		return fmt.Errorf("repo: delete repo: remove %s: %w", r.RepoDir, err)
	}
	if err := os.RemoveAll(filepath.Join(r.WorkDir, metaDirName)); err != nil {
		return fmt.Errorf("repo: delete repo: remove metadata dir: %w", err)
	}
	return nil
}

func nowUnix() int64 {
	return time.Now().Unix()
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
