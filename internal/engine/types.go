package engine

import (
	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/format"
	"github.com/bianoble/confpatch/internal/value"
)

// ComponentSpec describes one component's configuration step. It is built by
// the caller for a single pass and not retained by the engine.
type ComponentSpec struct {
	ID   string
	Name string

	Format format.Format
	Mode   format.Mode

	// TargetPath is the configuration file to rewrite, relative to the
	// install root or absolute. The file must exist.
	TargetPath string

	// Defaults is the component's default configuration tree. When it is
	// not null its flattened leaves prefill Overrides: each default applies
	// unless Overrides names the same key path.
	Defaults value.Value

	// Overrides maps key paths to user-entered text. Blank entries are
	// skipped, so a blank entry also suppresses the default of its key.
	Overrides *codec.FlatMap

	// AllowComments accepts comments and trailing commas in JSON targets.
	AllowComments bool
}

// Effective returns the overrides the engine applies: the flattened
// Defaults overlaid with Overrides. A default tree that cannot be flattened
// is a MalformedKeyPath error.
func (s ComponentSpec) Effective() (*codec.FlatMap, error) {
	if s.Defaults.Kind() == value.KindNull {
		return s.Overrides.Clone(), nil
	}
	flat, err := codec.Flatten(s.Defaults)
	if err != nil {
		return nil, err
	}
	return flat.Overlay(s.Overrides), nil
}

// Action is the outcome of a successful configuration step.
type Action string

const (
	ActionWritten    Action = "written"
	ActionUnchanged  Action = "unchanged"
	ActionWouldWrite Action = "would-write"
)

// ComponentResult holds what a configuration step did to its target.
type ComponentResult struct {
	ID     string
	Target string
	Format format.Format
	Mode   format.Mode
	Action Action

	// Before and After are the target content around the step.
	Before []byte
	After  []byte

	// SHA256 is the hash of After.
	SHA256 string
	// Backup is the hash of the stored pre-image, set when the target
	// was written with a backup store configured.
	Backup string
}

// ComponentError represents an error associated with a specific component.
type ComponentError struct {
	Component string
	Err       error
}

func (e ComponentError) Error() string {
	return e.Component + ": " + e.Err.Error()
}

func (e ComponentError) Unwrap() error {
	return e.Err
}

// ApplyResult holds the outcome of configuring several components. Results
// and Errors follow the input order.
type ApplyResult struct {
	Results []ComponentResult
	Errors  []ComponentError
}

// FileAction represents an action taken on a single file during restore.
type FileAction struct {
	Path   string
	Action string // "restored", "unchanged", "would-restore"
	IDs    []string
}

// DriftEntry represents a target that changed since it was configured.
type DriftEntry struct {
	Path     string
	IDs      []string
	Expected string
	Actual   string
}

// CheckResult holds the outcome of a check operation.
type CheckResult struct {
	Clean   bool
	Drifted []DriftEntry
	Missing []string
}

// RestoreResult holds the outcome of a restore operation.
type RestoreResult struct {
	Restored []FileAction
	Errors   []ComponentError
}
