package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/bianoble/confpatch/internal/format"
	"github.com/bianoble/confpatch/internal/platform"
	"github.com/bianoble/confpatch/internal/value"
)

// Load reads and validates a confpatch.yaml manifest. JSON catalogs parse
// too, since JSON is YAML.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	m, err := Parse(fs, path)
	if err != nil {
		return nil, err
	}
	if errs := Validate(m); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return m, nil
}

// Parse reads a manifest or values file without validating it.
func Parse(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// LoadLayered reads the manifest at path, layers each values file on top in
// order and validates the result.
func LoadLayered(fs afero.Fs, path string, valuesFiles []string) (*Manifest, error) {
	layers := make([]*Manifest, 0, len(valuesFiles)+1)
	for _, p := range append([]string{path}, valuesFiles...) {
		m, err := Parse(fs, p)
		if err != nil {
			return nil, err
		}
		layers = append(layers, m)
	}

	m, err := MergeAll(layers)
	if err != nil {
		return nil, err
	}
	if errs := Validate(m); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return m, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Manifest for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(m *Manifest) []string {
	var errs []string

	if m.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", m.Version))
	}

	if len(m.Components) == 0 {
		errs = append(errs, "at least one component is required")
	}

	ids := make(map[string]bool)
	for i, c := range m.Components {
		prefix := fmt.Sprintf("component[%d]", i)
		if c.ID != "" {
			prefix = fmt.Sprintf("component '%s'", c.ID)
		}

		if c.ID == "" {
			errs = append(errs, fmt.Sprintf("%s: 'id' is required", prefix))
		} else if ids[c.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate component id '%s'", prefix, c.ID))
		} else {
			ids[c.ID] = true
		}

		errs = append(errs, validateComponent(c, prefix)...)
	}

	return errs
}

func validateComponent(c Component, prefix string) []string {
	var errs []string

	if c.Target == "" {
		errs = append(errs, fmt.Sprintf("%s: 'target' is required — add 'target: <file relative to the component folder>'", prefix))
	}

	if _, err := format.ParseMode(c.Mode); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
	}

	for _, id := range sortedKeys(c.Platforms) {
		if err := platform.Validate(id); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
		}
	}

	switch c.Configuration.Kind() {
	case value.KindNull, value.KindObject, value.KindArray:
	default:
		errs = append(errs, fmt.Sprintf("%s: 'configuration' must be a mapping or a list", prefix))
	}

	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
