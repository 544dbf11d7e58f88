package repo

import (
	"errors"
	"fmt"
)

var (
	ErrBranchExists        = errors.New("repo: branch already exists")
	ErrActiveBranchDeletion = errors.New("repo: cannot delete the active branch")
)

// NewBranch creates branch name pointing at the active branch's
// current tip. Fails if the active branch has no commits yet, or if
// name already has a ref.
func (r *Repo) NewBranch(name string) error {
	active, err := r.Head()
	if err != nil {
		return err
	}
	tip, err := r.ReadRef(active)
	if err != nil {
		return fmt.Errorf("repo: new branch %q: %w", name, err)
	}
	if r.RefExists(name) {
		return fmt.Errorf("repo: new branch %q: %w", name, ErrBranchExists)
	}
	return r.WriteRef(name, tip)
}

// SwitchBranch makes name the active branch. Fails if name has no ref
// yet.
func (r *Repo) SwitchBranch(name string) error {
	if !r.RefExists(name) {
		return fmt.Errorf("repo: switch branch %q: %w", name, ErrBranchNotFound)
	}
	return r.setHead(name)
}

// DeleteBranch removes branch name's ref. Fails if name is the active
// branch.
func (r *Repo) DeleteBranch(name string) error {
	active, err := r.Head()
	if err != nil {
		return err
	}
	if active == name {
		return fmt.Errorf("repo: delete branch %q: %w", name, ErrActiveBranchDeletion)
	}
	if !r.RefExists(name) {
		return fmt.Errorf("repo: delete branch %q: %w", name, ErrBranchNotFound)
	}
	return removeFile(r.refPath(name))
}

// SoftReset moves the active branch's ref to the ancestor at offset n
// from its current tip. The working tree and any pending index are
// untouched.
func (r *Repo) SoftReset(n int) error {
	active, err := r.Head()
	if err != nil {
		return err
	}
	target, err := r.LoadByOffset(n)
	if err != nil {
		return fmt.Errorf("repo: soft reset: %w", err)
	}
	return r.WriteRef(active, target)
}
