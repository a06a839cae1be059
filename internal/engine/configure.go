package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/bianoble/confpatch/internal/cache"
	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/format"
	"github.com/bianoble/confpatch/internal/logging"
	"github.com/bianoble/confpatch/internal/sandbox"
)

// Engine applies component overrides to their configuration files.
type Engine struct {
	Sandbox  *sandbox.Sandbox
	Registry *format.Registry
	// Backups stores pre-images before a write. Optional.
	Backups *cache.Cache
	// DryRun computes results without writing anything.
	DryRun bool
	// Parallelism bounds how many target files are processed at once.
	// Zero or less means no limit.
	Parallelism int
}

// Configure runs one component through locate, load, patch and write.
// Nothing is written unless every override was applied.
func (e *Engine) Configure(ctx context.Context, spec ComponentSpec) (ComponentResult, error) {
	return e.configure(ctx, spec, nil)
}

// configure uses pending as the current content when non-nil, so dry runs
// see the output of earlier components sharing the target.
func (e *Engine) configure(ctx context.Context, spec ComponentSpec, pending []byte) (ComponentResult, error) {
	if err := ctx.Err(); err != nil {
		return ComponentResult{}, err
	}

	log := logging.Component(spec.ID)
	log.Debug().Str("target", spec.TargetPath).Str("format", string(spec.Format)).Str("mode", string(spec.Mode)).Msg("configuring")

	path, err := e.locate(spec.TargetPath)
	if err != nil {
		return ComponentResult{}, err
	}

	current := pending
	if current == nil {
		current, err = e.Sandbox.ReadFile(path)
		if err != nil {
			return ComponentResult{}, cfgerr.New(cfgerr.CorruptConfigFile, path, err)
		}
	}

	patcher, err := e.Registry.Get(spec.Format)
	if err != nil {
		return ComponentResult{}, err
	}

	mode := spec.Mode
	if mode == "" {
		mode = format.Patch
	}
	if spec.Format == format.INI && mode == format.Overwrite {
		log.Warn().Str("target", path).Msg("INI files only support patch mode, applying as patch")
		mode = format.Patch
	}

	overrides, err := spec.Effective()
	if err != nil {
		return ComponentResult{}, err
	}

	after, err := patcher.Patch(format.Request{
		Subject:       path,
		Current:       current,
		Overrides:     overrides,
		Mode:          mode,
		AllowComments: spec.AllowComments,
	})
	if err != nil {
		return ComponentResult{}, err
	}

	res := ComponentResult{
		ID:     spec.ID,
		Target: path,
		Format: spec.Format,
		Mode:   mode,
		Before: current,
		After:  after,
		SHA256: cache.ComputeHash(after),
	}

	switch {
	case bytes.Equal(current, after):
		res.Action = ActionUnchanged
	case e.DryRun:
		res.Action = ActionWouldWrite
	default:
		if e.Backups != nil {
			if res.Backup, err = e.Backups.Put(current); err != nil {
				return ComponentResult{}, cfgerr.New(cfgerr.WriteFailure, path, err)
			}
		}
		if err := e.Sandbox.SafeWrite(path, after, 0644); err != nil {
			return ComponentResult{}, cfgerr.New(cfgerr.WriteFailure, path, err)
		}
		res.Action = ActionWritten
	}

	log.Info().Str("target", path).Str("action", string(res.Action)).Msg("configured")
	return res, nil
}

// locate resolves the target inside the sandbox and requires it to exist.
func (e *Engine) locate(target string) (string, error) {
	path, err := e.Sandbox.ValidatePath(target)
	if err != nil {
		return "", cfgerr.New(cfgerr.TargetFileNotFound, target, err)
	}
	ok, err := e.Sandbox.Exists(path)
	if err != nil {
		return "", cfgerr.New(cfgerr.TargetFileNotFound, path, err)
	}
	if !ok {
		return "", cfgerr.New(cfgerr.TargetFileNotFound, path, os.ErrNotExist)
	}
	return path, nil
}

// ConfigureAll configures every component and collects per-component
// results. Components writing the same target run sequentially in input
// order; different targets run in parallel. A failure never stops the
// other components. The context is checked before each component starts.
func (e *Engine) ConfigureAll(ctx context.Context, specs []ComponentSpec) *ApplyResult {
	results := make([]*ComponentResult, len(specs))
	errs := make([]error, len(specs))

	var g errgroup.Group
	if e.Parallelism > 0 {
		g.SetLimit(e.Parallelism)
	}

	for _, group := range e.groupByTarget(specs) {
		group := group
		g.Go(func() error {
			var pending []byte
			for _, i := range group {
				var res ComponentResult
				var err error
				if e.DryRun {
					res, err = e.configure(ctx, specs[i], pending)
				} else {
					res, err = e.configure(ctx, specs[i], nil)
				}
				if err != nil {
					clog := logging.Component(specs[i].ID)
					clog.Debug().Err(err).Msg("configuration failed")
					errs[i] = err
					continue
				}
				pending = res.After
				results[i] = &res
			}
			return nil
		})
	}
	_ = g.Wait()

	out := &ApplyResult{}
	for i := range specs {
		switch {
		case errs[i] != nil:
			out.Errors = append(out.Errors, ComponentError{Component: specs[i].ID, Err: errs[i]})
		case results[i] != nil:
			out.Results = append(out.Results, *results[i])
		}
	}
	return out
}

// groupByTarget returns spec indices grouped by target file, groups ordered
// by first appearance.
func (e *Engine) groupByTarget(specs []ComponentSpec) [][]int {
	index := make(map[string]int)
	var groups [][]int
	for i, spec := range specs {
		key := filepath.Clean(spec.TargetPath)
		if resolved, err := e.Sandbox.ValidatePath(spec.TargetPath); err == nil {
			key = resolved
		}
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
