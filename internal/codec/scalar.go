package codec

import (
	"math"
	"strconv"
	"strings"

	"github.com/bianoble/confpatch/internal/value"
)

// ParseScalar infers a typed value from untyped override text, trying in
// order: a boolean literal (case-insensitive), a base-10 int64, a finite
// float, a JSON array or object literal, and finally the literal string.
// Surrounding whitespace is ignored when inferring a type; text that stays
// a string is kept as given.
func ParseScalar(text string) value.Value {
	raw := text
	text = strings.TrimSpace(text)

	switch strings.ToLower(text) {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.Int(i)
	}

	if decimalText(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return value.Float(f)
		}
	}

	if n := len(text); n >= 2 &&
		((text[0] == '[' && text[n-1] == ']') || (text[0] == '{' && text[n-1] == '}')) {
		if v, err := value.Decode([]byte(text)); err == nil {
			return v
		}
	}

	return value.String(raw)
}

// decimalText keeps ParseFloat away from "Inf", "NaN", hex floats and
// underscored literals.
func decimalText(s string) bool {
	digits := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
		default:
			return false
		}
	}
	return digits
}
