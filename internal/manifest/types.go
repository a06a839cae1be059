package manifest

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/value"
)

// Manifest represents the confpatch.yaml component catalog.
type Manifest struct {
	Version     int               `yaml:"version"`
	InstallRoot string            `yaml:"install_root,omitempty"`
	Variables   map[string]string `yaml:"variables,omitempty"`
	Components  []Component       `yaml:"components"`
}

// Component describes one installed component and how its configuration
// file is patched.
type Component struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name,omitempty"`
	DownloadURL string `yaml:"download_url,omitempty"`
	// Folder overrides the folder derived from DownloadURL.
	Folder string `yaml:"folder,omitempty"`
	Format string `yaml:"format,omitempty"` // "json", "ini"
	Mode   string `yaml:"mode,omitempty"`   // "patch", "overwrite"
	Target string `yaml:"target,omitempty"`

	Platforms map[string]PlatformTarget `yaml:"platforms,omitempty"`

	// ManualConfiguration false excludes the component. Unset means true.
	ManualConfiguration *bool `yaml:"manual_configuration,omitempty"`
	// Prefill seeds the overrides with the flattened Configuration. Unset
	// means true.
	Prefill       *bool `yaml:"prefill,omitempty"`
	AllowComments bool  `yaml:"allow_comments,omitempty"`

	Configuration Tree   `yaml:"configuration,omitempty"`
	Values        Values `yaml:"values,omitempty"`
}

// PlatformTarget overrides download and target for one platform id.
type PlatformTarget struct {
	DownloadURL string `yaml:"download_url,omitempty"`
	Target      string `yaml:"target,omitempty"`
}

// Enabled reports whether the component takes part in configuration.
func (c Component) Enabled() bool {
	return c.ManualConfiguration == nil || *c.ManualConfiguration
}

// Prefilled reports whether defaults pre-fill the overrides.
func (c Component) Prefilled() bool {
	return c.Prefill == nil || *c.Prefill
}

// DisplayName returns Name, or ID when Name is empty.
func (c Component) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// FormatName returns the declared format, or the target's extension when
// none is declared.
func (c Component) FormatName() string {
	if c.Format != "" {
		return strings.ToLower(strings.TrimSpace(c.Format))
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(c.Target)), ".")
}

// DownloadURLFor returns the platform's download URL if it has one, else
// the default.
func (c Component) DownloadURLFor(platform string) string {
	if p, ok := c.Platforms[platform]; ok && p.DownloadURL != "" {
		return p.DownloadURL
	}
	return c.DownloadURL
}

// TargetFor returns the platform's target if it has one, else the default.
func (c Component) TargetFor(platform string) string {
	if p, ok := c.Platforms[platform]; ok && p.Target != "" {
		return p.Target
	}
	return c.Target
}

// Defaults returns the configuration that prefills the overrides, or null
// when prefill is off.
func (c Component) Defaults() value.Value {
	if !c.Prefilled() {
		return value.Null()
	}
	return c.Configuration.Value
}

// Tree is a component's default configuration, kept in document order.
type Tree struct {
	value.Value
}

// UnmarshalYAML decodes any YAML node into a value tree.
func (t *Tree) UnmarshalYAML(node *yaml.Node) error {
	v, err := value.FromYAML(node)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	t.Value = v
	return nil
}

// Values are user-entered overrides keyed by key path, in document order.
type Values struct {
	m *codec.FlatMap
}

// ValuesOf builds Values from alternating key, value arguments.
func ValuesOf(pairs ...string) Values {
	return Values{m: codec.FlatMapOf(pairs...)}
}

// Map returns the values as a FlatMap. The zero Values is empty.
func (v Values) Map() *codec.FlatMap {
	if v.m == nil {
		return codec.NewFlatMap()
	}
	return v.m
}

// Len returns the number of values.
func (v Values) Len() int {
	return v.m.Len()
}

// UnmarshalYAML decodes a mapping of key paths to scalars. Null scalars
// become blank values.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	out := codec.NewFlatMap()
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		v.m = out
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: values must be a mapping of key paths to scalars", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value keys must be scalars", key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value for '%s' must be a scalar", val.Line, key.Value)
		}
		text := val.Value
		if val.ShortTag() == "!!null" {
			text = ""
		}
		out.Set(key.Value, text)
	}
	v.m = out
	return nil
}

// MarshalYAML renders the values as a mapping in key order.
func (v Values) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	v.Map().Range(func(key, text string) bool {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text},
		)
		return true
	})
	return node, nil
}
