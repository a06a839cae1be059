package codec

import (
	"strconv"
	"strings"

	"github.com/bianoble/confpatch/internal/keypath"
)

// DefaultSeparator joins display parts.
const DefaultSeparator = " > "

// DisplayOptions controls DisplayLabel.
type DisplayOptions struct {
	// RootPrefix is stripped from the front of the key when it matches the
	// first field. When empty, the first part is dropped from keys with more
	// than one part.
	RootPrefix string
	Separator  string
}

// part is a field followed by the indices applied to it.
type part struct {
	name    string
	indices []int
}

func parts(key string) ([]part, bool) {
	path, err := keypath.Parse(key)
	if err != nil {
		return nil, false
	}
	var out []part
	for _, seg := range path {
		if seg.IsIndex && len(out) > 0 {
			last := &out[len(out)-1]
			last.indices = append(last.indices, seg.Index)
			continue
		}
		if seg.IsIndex {
			out = append(out, part{indices: []int{seg.Index}})
			continue
		}
		out = append(out, part{name: seg.Name})
	}
	return out, true
}

func (p part) raw() string {
	var b strings.Builder
	b.WriteString(p.name)
	for _, i := range p.indices {
		b.WriteString("[" + strconv.Itoa(i) + "]")
	}
	return b.String()
}

func (p part) items() string {
	var b strings.Builder
	b.WriteString(p.name)
	for _, i := range p.indices {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("[Item " + strconv.Itoa(i) + "]")
	}
	return b.String()
}

// HierarchicalDisplay renders key as its full path with array elements
// spelled out, e.g. "AppSettings > Triggers [Item 0] > ExePath". An empty
// sep selects DefaultSeparator.
func HierarchicalDisplay(key, sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	ps, ok := parts(key)
	if !ok {
		return strings.Join(strings.Split(key, "."), sep)
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.items()
	}
	return strings.Join(out, sep)
}

// DisplayLabel renders key without its root part, e.g.
// "Triggers[0] > ExePath" for "AppSettings.Triggers[0].ExePath".
func DisplayLabel(key string, opts DisplayOptions) string {
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	var raw []string
	if ps, ok := parts(key); ok {
		raw = make([]string, len(ps))
		for i, p := range ps {
			raw[i] = p.raw()
		}
	} else {
		raw = strings.Split(key, ".")
	}

	switch {
	case opts.RootPrefix != "":
		if len(raw) > 1 && raw[0] == opts.RootPrefix {
			raw = raw[1:]
		}
	case len(raw) > 1:
		raw = raw[1:]
	}
	return strings.Join(raw, sep)
}

// IsArrayItem reports whether key addresses something inside an array.
func IsArrayItem(key string) bool {
	path, err := keypath.Parse(key)
	if err != nil {
		return strings.Contains(key, "[") && strings.Contains(key, "]")
	}
	for _, seg := range path {
		if seg.IsIndex {
			return true
		}
	}
	return false
}

// ArrayGroup splits key at its first array index, returning the key of the
// array and the element index: "A.Triggers[1].Type" gives ("A.Triggers", 1).
// ok is false when key has no index or does not parse.
func ArrayGroup(key string) (array string, index int, ok bool) {
	path, err := keypath.Parse(key)
	if err != nil {
		return "", 0, false
	}
	for i, seg := range path {
		if seg.IsIndex {
			return path[:i].String(), seg.Index, true
		}
	}
	return "", 0, false
}
