package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bianoble/confpatch/internal/cache"
	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/lock"
	"github.com/bianoble/confpatch/internal/logging"
	"github.com/bianoble/confpatch/internal/sandbox"
)

// RestoreEngine writes backed-up pre-images back to their targets.
type RestoreEngine struct {
	Sandbox *sandbox.Sandbox
	Backups *cache.Cache
	DryRun  bool
}

// Restore works per target file. Selecting a component id selects its
// target; the file goes back to the oldest pre-image recorded for it, which
// undoes every component sharing the target. An empty only restores all
// targets. Restored targets are removed from lf unless DryRun is set.
func (e *RestoreEngine) Restore(ctx context.Context, lf *lock.Lockfile, only []string) (*RestoreResult, error) {
	selected, err := selectTargets(*lf, only)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	var done []string
	for _, target := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries := lf.ByTarget(target)
		action, err := e.restoreTarget(target, entries)
		if err != nil {
			result.Errors = append(result.Errors, ComponentError{Component: entries[0].ID, Err: err})
			continue
		}
		result.Restored = append(result.Restored, FileAction{Path: target, Action: action, IDs: ids(entries)})
		done = append(done, target)
	}

	if !e.DryRun {
		removeTargets(lf, done)
	}
	return result, nil
}

func (e *RestoreEngine) restoreTarget(target string, entries []lock.Entry) (string, error) {
	backup := ""
	for _, entry := range entries {
		if entry.Backup != "" {
			backup = entry.Backup
			break
		}
	}
	if backup == "" {
		return "", fmt.Errorf("no backup recorded for '%s'", target)
	}

	content, ok, err := e.Backups.Get(backup)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("backup %s for '%s' is missing or corrupt", backup, target)
	}

	current, err := e.Sandbox.ReadFile(target)
	if err == nil && bytes.Equal(current, content) {
		return "unchanged", nil
	}
	if err == nil {
		if actual := cache.ComputeHash(current); actual != entries[len(entries)-1].SHA256 {
			logging.Warn().Str("target", target).Msg("target changed since it was configured, local edits will be lost")
		}
	}

	if e.DryRun {
		return "would-restore", nil
	}
	if err := e.Sandbox.SafeWrite(target, content, 0644); err != nil {
		return "", cfgerr.New(cfgerr.WriteFailure, target, err)
	}
	return "restored", nil
}

func selectTargets(lf lock.Lockfile, only []string) ([]string, error) {
	all := targets(lf)
	if len(only) == 0 {
		return all, nil
	}

	want := make(map[string]bool)
	for _, id := range only {
		entry, ok := lf.Find(id)
		if !ok {
			return nil, fmt.Errorf("component '%s' is not in the lockfile", id)
		}
		want[entry.Target] = true
	}

	var out []string
	for _, t := range all {
		if want[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

func removeTargets(lf *lock.Lockfile, done []string) {
	drop := make(map[string]bool, len(done))
	for _, t := range done {
		drop[t] = true
	}
	kept := lf.Components[:0]
	for _, entry := range lf.Components {
		if !drop[entry.Target] {
			kept = append(kept, entry)
		}
	}
	lf.Components = kept
}
