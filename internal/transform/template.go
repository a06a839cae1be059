// Package transform expands {{ .Name }} placeholders in component targets,
// default configuration trees and override values.
package transform

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/keypath"
	"github.com/bianoble/confpatch/internal/value"
)

// TemplateTransform applies Go text/template variable substitution.
// Referencing an undefined variable is an error.
type TemplateTransform struct{}

// Expand processes a single string through template substitution. Text
// without "{{" is returned as is.
func (t *TemplateTransform) Expand(text string, vars map[string]string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// ExpandValues expands every value of flat into a new FlatMap. Keys are
// not expanded.
func (t *TemplateTransform) ExpandValues(flat *codec.FlatMap, vars map[string]string) (*codec.FlatMap, error) {
	out := codec.NewFlatMap()
	var err error
	flat.Range(func(key, text string) bool {
		var expanded string
		expanded, err = t.Expand(text, vars)
		if err != nil {
			err = fmt.Errorf("value '%s': %w", key, err)
			return false
		}
		out.Set(key, expanded)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpandTree expands the string leaves of a default configuration tree.
// Member names are not expanded.
func (t *TemplateTransform) ExpandTree(tree value.Value, vars map[string]string) (value.Value, error) {
	return t.expandNode(tree, nil, vars)
}

func (t *TemplateTransform) expandNode(v value.Value, path keypath.Path, vars map[string]string) (value.Value, error) {
	switch v.Kind() {
	case value.KindString:
		text, err := t.Expand(v.AsString(), vars)
		if err != nil {
			return value.Value{}, fmt.Errorf("default '%s': %w", path, err)
		}
		return value.String(text), nil
	case value.KindObject:
		members := v.Members()
		for i, m := range members {
			child, err := t.expandNode(m.Value, path.Child(keypath.Field(m.Key)), vars)
			if err != nil {
				return value.Value{}, err
			}
			members[i].Value = child
		}
		return value.NewObject(members...), nil
	case value.KindArray:
		elems := v.Elements()
		for i, e := range elems {
			child, err := t.expandNode(e, path.Child(keypath.Index(i)), vars)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = child
		}
		return value.NewArray(elems...), nil
	}
	return v, nil
}

// MergeVars merges variable layers in order; later layers win.
func MergeVars(layers ...map[string]string) map[string]string {
	n := 0
	for _, l := range layers {
		n += len(l)
	}
	merged := make(map[string]string, n)
	for _, l := range layers {
		for k, v := range l {
			merged[k] = v
		}
	}
	return merged
}
