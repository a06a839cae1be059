package codec

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FlatMap maps textual key paths to leaf text, in insertion order.
// Setting an existing key keeps its original position.
type FlatMap struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewFlatMap returns an empty FlatMap.
func NewFlatMap() *FlatMap {
	return &FlatMap{m: orderedmap.New[string, string]()}
}

// FlatMapOf builds a FlatMap from alternating key, value arguments.
// It panics on an odd argument count.
func FlatMapOf(pairs ...string) *FlatMap {
	if len(pairs)%2 != 0 {
		panic("codec: FlatMapOf needs key/value pairs")
	}
	f := NewFlatMap()
	for i := 0; i < len(pairs); i += 2 {
		f.Set(pairs[i], pairs[i+1])
	}
	return f
}

func (f *FlatMap) lazy() *orderedmap.OrderedMap[string, string] {
	if f.m == nil {
		f.m = orderedmap.New[string, string]()
	}
	return f.m
}

// Set assigns text to key.
func (f *FlatMap) Set(key, text string) {
	f.lazy().Set(key, text)
}

// Get returns the text stored for key.
func (f *FlatMap) Get(key string) (string, bool) {
	if f == nil || f.m == nil {
		return "", false
	}
	return f.m.Get(key)
}

// Delete removes key.
func (f *FlatMap) Delete(key string) {
	if f == nil || f.m == nil {
		return
	}
	f.m.Delete(key)
}

// Len returns the number of entries.
func (f *FlatMap) Len() int {
	if f == nil || f.m == nil {
		return 0
	}
	return f.m.Len()
}

// Keys returns the keys in order.
func (f *FlatMap) Keys() []string {
	keys := make([]string, 0, f.Len())
	f.Range(func(key, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Range calls fn for each entry in order until fn returns false.
func (f *FlatMap) Range(fn func(key, text string) bool) {
	if f == nil || f.m == nil {
		return
	}
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns an independent copy of f.
func (f *FlatMap) Clone() *FlatMap {
	out := NewFlatMap()
	f.Range(func(key, text string) bool {
		out.Set(key, text)
		return true
	})
	return out
}

// Overlay sets every entry of other on a copy of f. Entries of other win;
// new keys are appended after the keys of f.
func (f *FlatMap) Overlay(other *FlatMap) *FlatMap {
	out := f.Clone()
	other.Range(func(key, text string) bool {
		out.Set(key, text)
		return true
	})
	return out
}

// NonBlank returns the entries whose text is not empty or whitespace only.
// Blank entries mean "no override".
func (f *FlatMap) NonBlank() *FlatMap {
	out := NewFlatMap()
	f.Range(func(key, text string) bool {
		if !IsBlank(text) {
			out.Set(key, text)
		}
		return true
	})
	return out
}

// MarshalJSON renders f as a JSON object in key order.
func (f *FlatMap) MarshalJSON() ([]byte, error) {
	return f.lazy().MarshalJSON()
}

// IsBlank reports whether text is empty or whitespace only.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
