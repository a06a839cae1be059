package lock

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/bianoble/confpatch/internal/sandbox"
)

// Load reads and validates a confpatch.lock file.
func Load(fs afero.Fs, path string) (*Lockfile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %s: %w", path, err)
	}

	var lf Lockfile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lockfile %s: %w", path, err)
	}

	if errs := Validate(&lf); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &lf, nil
}

// LoadOrNew is Load, returning an empty lockfile when path does not exist.
func LoadOrNew(fs afero.Fs, path string) (*Lockfile, error) {
	lf, err := Load(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return lf, err
}

// Save writes a lockfile atomically using a temp file and rename.
func Save(fs afero.Fs, path string, lf *Lockfile) error {
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}
	if err := sandbox.WriteAtomic(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing lockfile %s: %w", path, err)
	}
	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lockfile validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Lockfile for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(lf *Lockfile) []string {
	var errs []string

	if lf.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", lf.Version))
	}

	ids := make(map[string]bool)
	for i, e := range lf.Components {
		prefix := fmt.Sprintf("component[%d]", i)
		if e.ID != "" {
			prefix = fmt.Sprintf("component '%s'", e.ID)
		}

		if e.ID == "" {
			errs = append(errs, fmt.Sprintf("%s: 'id' is required", prefix))
		} else if ids[e.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate component id '%s'", prefix, e.ID))
		} else {
			ids[e.ID] = true
		}

		if e.Target == "" {
			errs = append(errs, fmt.Sprintf("%s: 'target' is required", prefix))
		}
		if e.SHA256 == "" {
			errs = append(errs, fmt.Sprintf("%s: 'sha256' is required", prefix))
		}
	}

	return errs
}
