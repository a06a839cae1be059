package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ErrInvalidJSON is returned by Decode for text that is not a JSON document.
var ErrInvalidJSON = errors.New("invalid JSON document")

// Decode parses a JSON document, keeping object members in document order.
// A leading UTF-8 byte order mark is ignored.
func Decode(data []byte) (Value, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return numberFromRaw(r.Raw, r.Num)
	case gjson.String:
		return String(r.Str)
	}

	if r.IsArray() {
		var elems []Value
		r.ForEach(func(_, item gjson.Result) bool {
			elems = append(elems, fromResult(item))
			return true
		})
		return NewArray(elems...)
	}

	var members []Member
	r.ForEach(func(key, item gjson.Result) bool {
		members = append(members, Member{Key: key.Str, Value: fromResult(item)})
		return true
	})
	return NewObject(members...)
}

// numberFromRaw keeps integral literals that fit in an int64 as integers.
// The literal itself is kept for encoding, since float64 cannot hold every
// JSON number.
func numberFromRaw(raw string, num float64) Value {
	raw = strings.TrimSpace(raw)
	v := Float(num)
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			v = Int(i)
		}
	}
	v.raw = raw
	return v
}

// MarshalJSON renders v as compact JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writeJSON(&buf, v)
	return buf.Bytes(), nil
}

// Encode renders v as JSON indented by two spaces, members in document
// order, with a trailing newline. Arrays are always expanded one element per
// line.
func Encode(v Value) []byte {
	compact, _ := v.MarshalJSON()
	out := pretty.PrettyOptions(compact, &pretty.Options{Indent: "  "})
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out
}

func writeJSON(buf *bytes.Buffer, v Value) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		if v.raw == "" && !v.isInt && (math.IsNaN(v.float) || math.IsInf(v.float, 0)) {
			buf.WriteString("null")
			return
		}
		buf.WriteString(formatNumber(v))
	case KindString:
		writeString(buf, v.str)
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, m.Key)
			buf.WriteByte(':')
			writeJSON(buf, m.Value)
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, e)
		}
		buf.WriteByte(']')
	}
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
}
