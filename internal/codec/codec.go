// Package codec converts between configuration trees and their flat form:
// an ordered map of key paths such as "AppSettings.Triggers[0].ExePath" to
// leaf text.
package codec

import (
	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/keypath"
	"github.com/bianoble/confpatch/internal/value"
)

// Flatten walks tree depth first and records every leaf under its key path.
// Object members are visited in document order, array elements by index.
// Empty objects and arrays produce no entries. A null root flattens to an
// empty map.
func Flatten(tree value.Value) (*FlatMap, error) {
	out := NewFlatMap()
	switch tree.Kind() {
	case value.KindNull:
		return out, nil
	case value.KindObject, value.KindArray:
	default:
		return nil, cfgerr.Newf(cfgerr.MalformedKeyPath, "", "a %s document root has no key path", tree.Kind())
	}
	if err := flatten(out, nil, tree); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(out *FlatMap, path keypath.Path, v value.Value) error {
	switch v.Kind() {
	case value.KindObject:
		for _, m := range v.Members() {
			child := path.Child(keypath.Field(m.Key))
			if !keypath.ValidField(m.Key) {
				return cfgerr.Newf(cfgerr.MalformedKeyPath, child.String(),
					"field name %q cannot be written as a key path segment", m.Key)
			}
			if err := flatten(out, child, m.Value); err != nil {
				return err
			}
		}
	case value.KindArray:
		for i, e := range v.Elements() {
			if err := flatten(out, path.Child(keypath.Index(i)), e); err != nil {
				return err
			}
		}
	default:
		out.Set(path.String(), v.Text())
	}
	return nil
}

// Unflatten rebuilds a tree from flat, parsing each leaf with ParseScalar.
// Arrays auto-extend with empty objects up to the highest index addressed.
// An empty map yields an empty object.
func Unflatten(flat *FlatMap) (value.Value, error) {
	return Apply(value.EmptyObject(), flat, false)
}

// Apply sets every entry of overrides on tree and returns the result. With
// skipBlank, entries whose text is blank are ignored. Apply is all or
// nothing: on error the caller's tree is unchanged.
func Apply(tree value.Value, overrides *FlatMap, skipBlank bool) (value.Value, error) {
	var err error
	overrides.Range(func(key, text string) bool {
		if skipBlank && IsBlank(text) {
			return true
		}
		tree, err = SetText(tree, key, text)
		return err == nil
	})
	if err != nil {
		return value.Value{}, err
	}
	return tree, nil
}

// SetText parses key and stores ParseScalar(text) at that path.
func SetText(tree value.Value, key, text string) (value.Value, error) {
	path, err := keypath.Parse(key)
	if err != nil {
		return value.Value{}, err
	}
	return Set(tree, path, ParseScalar(text))
}

// Set returns a copy of tree with leaf stored at path, creating intermediate
// objects and arrays as needed. Arrays grow with empty-object placeholders.
// A null on the path is replaced by the container the path needs, and an
// empty object is promoted to an array when indexed. Any other mismatch
// fails with cfgerr.PathConflict.
func Set(tree value.Value, path keypath.Path, leaf value.Value) (value.Value, error) {
	if len(path) == 0 {
		return value.Value{}, cfgerr.Newf(cfgerr.MalformedKeyPath, "", "path is empty")
	}
	return set(tree, path, 0, leaf)
}

func set(node value.Value, path keypath.Path, i int, leaf value.Value) (value.Value, error) {
	seg := path[i]
	node, err := container(node, path, i)
	if err != nil {
		return value.Value{}, err
	}

	if seg.IsIndex {
		child, _ := node.At(seg.Index)
		if i < len(path)-1 {
			if child, err = set(child, path, i+1, leaf); err != nil {
				return value.Value{}, err
			}
		} else {
			child = leaf
		}
		return node.WithIndex(seg.Index, child, value.EmptyObject()), nil
	}

	child, _ := node.Get(seg.Name)
	if i < len(path)-1 {
		if child, err = set(child, path, i+1, leaf); err != nil {
			return value.Value{}, err
		}
	} else {
		child = leaf
	}
	return node.With(seg.Name, child), nil
}

// container returns node as the kind of container path[i] addresses.
func container(node value.Value, path keypath.Path, i int) (value.Value, error) {
	seg := path[i]
	switch node.Kind() {
	case value.KindNull:
		if seg.IsIndex {
			return value.NewArray(), nil
		}
		return value.EmptyObject(), nil
	case value.KindArray:
		if seg.IsIndex {
			return node, nil
		}
	case value.KindObject:
		if !seg.IsIndex {
			return node, nil
		}
		if node.Len() == 0 {
			return value.NewArray(), nil
		}
	}

	at := "document root"
	if i > 0 {
		at = path[:i].String()
	}
	return value.Value{}, cfgerr.Newf(cfgerr.PathConflict, path.String(),
		"%s is %s, cannot address %s", at, article(node.Kind()), seg)
}

func article(k value.Kind) string {
	switch k {
	case value.KindObject, value.KindArray:
		return "an " + k.String()
	default:
		return "a " + k.String()
	}
}
