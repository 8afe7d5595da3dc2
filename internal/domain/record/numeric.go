package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IsInteger reports whether v is an integer-typed JSON value.
// Integer-looking strings are not integers: only the value's type counts.
func IsInteger(v any) bool {
	switch t := v.(type) {
	case int, int32, int64:
		return true
	case json.Number:
		return !strings.ContainsAny(t.String(), ".eE")
	default:
		return false
	}
}

// IsNumeric reports whether v parses as a finite floating-point literal.
func IsNumeric(v any) bool {
	_, ok := ToNumber(v)
	return ok
}

// ToNumber converts v to float64. Strings are parsed after trimming spaces;
// booleans, NaN and infinities are rejected.
func ToNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		p, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Text returns the string form of a scalar as it is indexed in text fields.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return ""
	}
}
