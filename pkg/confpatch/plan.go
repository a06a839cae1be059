package confpatch

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/engine"
	"github.com/bianoble/confpatch/internal/format"
	"github.com/bianoble/confpatch/internal/manifest"
	"github.com/bianoble/confpatch/internal/platform"
	"github.com/bianoble/confpatch/internal/sandbox"
	"github.com/bianoble/confpatch/internal/transform"
)

// Planned is a manifest component resolved for this platform and install
// root. Values holds the effective overrides, defaults included. Err is set
// when the component could not be resolved; Spec is then incomplete.
type Planned struct {
	Component manifest.Component
	Folder    string
	Spec      ComponentSpec
	Values    *codec.FlatMap
	Err       error
}

// Plan resolves the selected components without touching their files.
func (c *Client) Plan(only []string) ([]Planned, error) {
	m, err := c.loadManifest()
	if err != nil {
		return nil, err
	}
	sb, err := c.sandbox(m)
	if err != nil {
		return nil, err
	}
	return c.plan(m, sb, only)
}

func (c *Client) plan(m *manifest.Manifest, sb *sandbox.Sandbox, only []string) ([]Planned, error) {
	for _, pattern := range only {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid --only pattern '%s'", pattern)
		}
	}

	vars, err := c.variables(m)
	if err != nil {
		return nil, err
	}

	tx := &transform.TemplateTransform{}
	var planned []Planned
	for _, comp := range m.Components {
		if !comp.Enabled() || !selected(comp.ID, only) {
			continue
		}
		planned = append(planned, c.resolve(comp, sb.Root, vars, tx))
	}

	if len(only) > 0 && len(planned) == 0 {
		return nil, fmt.Errorf("no enabled component matches %s", strings.Join(only, ", "))
	}
	return planned, nil
}

func (c *Client) resolve(comp manifest.Component, root string, vars map[string]string, tx *transform.TemplateTransform) Planned {
	p := Planned{Component: comp}

	p.Folder = comp.Folder
	if p.Folder == "" {
		p.Folder = platform.ComponentFolder(comp.DownloadURLFor(c.platform))
	}

	mode, err := format.ParseMode(comp.Mode)
	if err != nil {
		p.Err = err
		return p
	}

	target, err := tx.Expand(comp.TargetFor(c.platform), vars)
	if err != nil {
		p.Err = fmt.Errorf("target: %w", err)
		return p
	}

	defaults, err := tx.ExpandTree(comp.Defaults(), vars)
	if err != nil {
		p.Err = err
		return p
	}
	overrides, err := tx.ExpandValues(comp.Values.Map(), vars)
	if err != nil {
		p.Err = err
		return p
	}

	p.Spec = engine.ComponentSpec{
		ID:            comp.ID,
		Name:          comp.DisplayName(),
		Format:        format.ParseFormat(comp.FormatName()),
		Mode:          mode,
		TargetPath:    platform.ResolveTarget(root, p.Folder, target),
		Defaults:      defaults,
		Overrides:     overrides,
		AllowComments: comp.AllowComments,
	}
	if p.Values, err = p.Spec.Effective(); err != nil {
		p.Err = fmt.Errorf("configuration: %w", err)
	}
	return p
}

func selected(id string, only []string) bool {
	if len(only) == 0 {
		return true
	}
	for _, pattern := range only {
		if ok, _ := doublestar.Match(pattern, id); ok {
			return true
		}
	}
	return false
}
