// Package keypath parses and renders the textual key paths used to address a
// node of a configuration tree, such as "AppSettings.Triggers[0].ExePath".
//
// Grammar:
//
//	path    = step *( "." field *index )
//	step    = field *index | 1*index
//	field   = 1*( any char except "." "[" "]" )
//	index   = "[" 1*DIGIT "]"
package keypath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bianoble/confpatch/internal/cfgerr"
)

// MaxIndex bounds array indices so a single override cannot force an
// arbitrarily large auto-extended array.
const MaxIndex = 1 << 16

// Segment is one step of a path: an object field or an array index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// Field returns a segment addressing the object member name.
func Field(name string) Segment { return Segment{Name: name} }

// Index returns a segment addressing array element i.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path is a parsed key path.
type Path []Segment

// String renders the path in its textual form. Fields are joined by ".",
// indices are appended to the preceding segment.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if !seg.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Child returns a copy of p extended by seg.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parse parses the textual form of a key path. Malformed text fails with a
// cfgerr.MalformedKeyPath error carrying the text.
func Parse(text string) (Path, error) {
	if text == "" {
		return nil, malformed(text, "path is empty")
	}

	var path Path
	i := 0
	expectField := true
	for i < len(text) {
		switch c := text[i]; {
		case c == '[':
			end := strings.IndexByte(text[i:], ']')
			if end < 0 {
				return nil, malformed(text, "unbalanced '[' at offset %d", i)
			}
			idx, err := parseIndex(text[i+1 : i+end])
			if err != nil {
				return nil, malformed(text, "%v", err)
			}
			path = append(path, Index(idx))
			i += end + 1
			expectField = false
			if i < len(text) && text[i] != '[' && text[i] != '.' {
				return nil, malformed(text, "unexpected %q after index at offset %d", text[i], i)
			}
		case c == ']':
			return nil, malformed(text, "unbalanced ']' at offset %d", i)
		case c == '.':
			if expectField {
				return nil, malformed(text, "empty field name at offset %d", i)
			}
			i++
			expectField = true
			if i == len(text) {
				return nil, malformed(text, "path ends with '.'")
			}
			if text[i] == '[' {
				return nil, malformed(text, "empty field name at offset %d", i)
			}
		default:
			if !expectField {
				return nil, malformed(text, "missing '.' before field at offset %d", i)
			}
			end := strings.IndexAny(text[i:], ".[]")
			if end < 0 {
				end = len(text) - i
			}
			path = append(path, Field(text[i:i+end]))
			i += end
			expectField = false
		}
	}
	return path, nil
}

// MustParse is Parse for paths known to be valid; it panics otherwise.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidField reports whether name can be used as a field segment: non-empty
// and free of ".", "[" and "]".
func ValidField(name string) bool {
	return name != "" && !strings.ContainsAny(name, ".[]")
}

func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty index")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("index %q is not a non-negative integer", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > MaxIndex {
		return 0, fmt.Errorf("index %s exceeds the maximum of %d", s, MaxIndex)
	}
	return n, nil
}

func malformed(text, format string, args ...any) error {
	return cfgerr.Newf(cfgerr.MalformedKeyPath, text, format, args...)
}
