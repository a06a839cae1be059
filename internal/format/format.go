// Package format rewrites configuration file content to apply overrides.
// Each supported file format has a Patcher; a Registry maps format names to
// patchers.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/codec"
)

// Format names a configuration file format.
type Format string

const (
	JSON Format = "json"
	INI  Format = "ini"
)

// ParseFormat normalizes a format name. Unknown names are kept so they can
// be reported as unsupported.
func ParseFormat(s string) Format {
	return Format(strings.ToLower(strings.TrimSpace(s)))
}

// Mode selects merge or replace semantics.
type Mode string

const (
	// Patch changes only the supplied keys and keeps the rest of the file.
	Patch Mode = "patch"
	// Overwrite replaces the document with one holding only the supplied keys.
	Overwrite Mode = "overwrite"
)

// ParseMode parses a mode name case-insensitively. The empty string is Patch.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Patch):
		return Patch, nil
	case string(Overwrite):
		return Overwrite, nil
	}
	return "", fmt.Errorf("invalid mode '%s' — use 'patch' or 'overwrite'", s)
}

// Request is the input to a Patcher.
type Request struct {
	// Subject names the file in errors.
	Subject string
	// Current is the existing file content. Overwrite ignores it.
	Current   []byte
	Overrides *codec.FlatMap
	Mode      Mode
	// AllowComments accepts // and /* */ comments and trailing commas in
	// JSON input.
	AllowComments bool
}

// Patcher applies a Request and returns the complete new file content.
// Blank overrides are skipped. A Patcher never returns partial content: on
// error the result is nil.
type Patcher interface {
	Patch(req Request) ([]byte, error)
}

// Registry maps formats to Patcher implementations.
type Registry struct {
	patchers map[Format]Patcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{patchers: make(map[Format]Patcher)}
}

// DefaultRegistry returns a registry with the JSON and INI patchers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(JSON, JSONPatcher{})
	r.Register(INI, INIPatcher{})
	return r
}

// Register adds p for format f, replacing any previous patcher.
func (r *Registry) Register(f Format, p Patcher) {
	r.patchers[f] = p
}

// Get returns the patcher for f or a cfgerr.UnsupportedFormat error.
func (r *Registry) Get(f Format) (Patcher, error) {
	p, ok := r.patchers[f]
	if !ok {
		return nil, cfgerr.Newf(cfgerr.UnsupportedFormat, string(f), "supported formats: %s", r.supported())
	}
	return p, nil
}

func (r *Registry) supported() string {
	names := make([]string, 0, len(r.patchers))
	for f := range r.patchers {
		names = append(names, string(f))
	}
	if len(names) == 0 {
		return "(none registered)"
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
