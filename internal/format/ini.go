package format

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/codec"
)

const utf8BOM = "\ufeff"

// INIPatcher upserts key=value lines. Keys are matched globally: section
// headers do not scope the search and the first matching line wins, so a
// key defined in two sections is only ever updated in the first. Overwrite
// is not supported for INI and behaves like Patch.
type INIPatcher struct{}

func (INIPatcher) Patch(req Request) ([]byte, error) {
	if !utf8.Valid(req.Current) || bytes.IndexByte(req.Current, 0) >= 0 {
		return nil, cfgerr.New(cfgerr.CorruptConfigFile, req.Subject, errors.New("file is not text"))
	}

	lines := SplitLines(req.Current)
	var err error
	req.Overrides.Range(func(key, text string) bool {
		if codec.IsBlank(text) {
			return true
		}
		if err = validINIKey(key); err != nil {
			return false
		}
		if strings.ContainsAny(text, "\r\n") {
			err = cfgerr.Newf(cfgerr.InvalidValue, key, "INI values must fit on one line")
			return false
		}
		lines.Upsert(key, text)
		return true
	})
	if err != nil {
		return nil, err
	}
	return lines.Bytes(), nil
}

// validINIKey rejects keys Find could never match again, so every accepted
// key is updated in place on the next apply.
func validINIKey(key string) error {
	if key == "" || key != strings.TrimSpace(key) || strings.ContainsAny(key, "=\r\n") || key[0] == ';' || key[0] == '#' {
		return cfgerr.Newf(cfgerr.MalformedKeyPath, key, "not a valid INI key")
	}
	return nil
}

// Lines is an INI file as an ordered list of lines. It remembers the line
// ending and byte order mark of the input so Bytes reproduces them.
type Lines struct {
	lines []string
	eol   string
	bom   bool
}

// SplitLines splits data into lines. CRLF input keeps CRLF endings.
func SplitLines(data []byte) *Lines {
	text := string(data)
	l := &Lines{eol: "\n"}
	if strings.HasPrefix(text, utf8BOM) {
		l.bom = true
		text = text[len(utf8BOM):]
	}
	if strings.Contains(text, "\r\n") {
		l.eol = "\r\n"
	}
	if text == "" {
		return l
	}
	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	for _, line := range strings.Split(text, "\n") {
		l.lines = append(l.lines, strings.TrimSuffix(line, "\r"))
	}
	return l
}

// Lines returns a copy of the lines without line endings.
func (l *Lines) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Find returns the index of the first line assigning key, or -1. Blank
// lines and comments starting with ';' or '#' are skipped.
func (l *Lines) Find(key string) int {
	for i, line := range l.lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' {
			continue
		}
		if strings.HasPrefix(trimmed, key+"=") || strings.HasPrefix(trimmed, key+" =") {
			return i
		}
	}
	return -1
}

// Upsert replaces the first line assigning key with key=text, or appends
// that line when there is none.
func (l *Lines) Upsert(key, text string) {
	line := key + "=" + text
	if i := l.Find(key); i >= 0 {
		l.lines[i] = line
		return
	}
	l.lines = append(l.lines, line)
}

// Bytes joins the lines with the original line ending. Non-empty output
// always ends with a line ending.
func (l *Lines) Bytes() []byte {
	var b strings.Builder
	if l.bom {
		b.WriteString(utf8BOM)
	}
	for _, line := range l.lines {
		b.WriteString(line)
		b.WriteString(l.eol)
	}
	return []byte(b.String())
}
