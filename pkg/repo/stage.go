package repo

import (
	"fmt"

	"github.com/odvcencio/gato/pkg/gatoconfig"
	"github.com/odvcencio/gato/pkg/stage"
)

// Stage ingests paths into the pending staging index, creating one if
// none exists yet.
func (r *Repo) Stage(paths []string) (*stage.Result, error) {
	ignore := stage.EffectiveIgnoreSet(r.Config.Ignore, gatoconfig.FileName, metaDirName)

	existing, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}

	result, err := stage.Stage(r.WorkDir, paths, ignore, r.Config.Level(), r.Store, existing)
	if err != nil {
		return nil, fmt.Errorf("repo: stage: %w", err)
	}
	if err := r.SaveIndex(result.Index); err != nil {
		return nil, fmt.Errorf("repo: stage: %w", err)
	}
	return result, nil
}
