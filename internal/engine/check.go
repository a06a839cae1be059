package engine

import (
	"context"
	"os"

	"github.com/bianoble/confpatch/internal/cache"
	"github.com/bianoble/confpatch/internal/lock"
	"github.com/bianoble/confpatch/internal/sandbox"
)

// CheckEngine verifies that configured targets still hold the content
// recorded in the lockfile.
type CheckEngine struct {
	Sandbox *sandbox.Sandbox
}

// Check compares each recorded target against its expected hash. Targets
// shared by several components are checked once, against the entry written
// last. Returns Clean=true if everything matches.
func (e *CheckEngine) Check(ctx context.Context, lf lock.Lockfile) (*CheckResult, error) {
	result := &CheckResult{Clean: true}

	for _, target := range targets(lf) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries := lf.ByTarget(target)
		expected := entries[len(entries)-1].SHA256

		content, err := e.Sandbox.ReadFile(target)
		if err != nil {
			if os.IsNotExist(err) {
				result.Missing = append(result.Missing, target)
				result.Clean = false
				continue
			}
			return nil, err
		}

		if actual := cache.ComputeHash(content); actual != expected {
			result.Drifted = append(result.Drifted, DriftEntry{
				Path:     target,
				IDs:      ids(entries),
				Expected: expected,
				Actual:   actual,
			})
			result.Clean = false
		}
	}

	return result, nil
}

// targets returns the distinct targets of lf in lockfile order.
func targets(lf lock.Lockfile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range lf.Components {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	return out
}

func ids(entries []lock.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
