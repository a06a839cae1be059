package value

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a decoded YAML node into a Value, keeping mapping order.
// A nil or empty node yields null. Scalars follow their resolved YAML tag;
// non-finite floats and timestamps are kept as their source text.
func FromYAML(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null(), nil
	}

	switch node.Kind {
	case 0:
		return Null(), nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return FromYAML(node.Content[0])
	case yaml.AliasNode:
		return FromYAML(node.Alias)
	case yaml.MappingNode:
		members := make([]Member, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			child, err := FromYAML(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: key.Value, Value: child})
		}
		return NewObject(members...), nil
	case yaml.SequenceNode:
		elems := make([]Value, 0, len(node.Content))
		for _, item := range node.Content {
			child, err := FromYAML(item)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, child)
		}
		return NewArray(elems...), nil
	case yaml.ScalarNode:
		return scalarFromYAML(node), nil
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
}

func scalarFromYAML(node *yaml.Node) Value {
	switch node.ShortTag() {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return Bool(b)
		}
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i)
		}
		var f float64
		if err := node.Decode(&f); err == nil {
			return Float(f)
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return Float(f)
		}
	}
	return String(node.Value)
}
