package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// toNumber coerces a scalar to float64. integral reports whether the value
// was an integer (so sums of integers can stay integers). Strings are parsed
// after trimming; booleans count as 1 and 0. ok is false for anything else,
// including nil.
func toNumber(v interface{}) (f float64, integral bool, ok bool) {
	switch val := v.(type) {
	case float64:
		return val, false, true
	case float32:
		return float64(val), false, true
	case int:
		return float64(val), true, true
	case int8:
		return float64(val), true, true
	case int16:
		return float64(val), true, true
	case int32:
		return float64(val), true, true
	case int64:
		return float64(val), true, true
	case uint:
		return float64(val), true, true
	case uint8:
		return float64(val), true, true
	case uint16:
		return float64(val), true, true
	case uint32:
		return float64(val), true, true
	case uint64:
		return float64(val), true, true
	case bool:
		if val {
			return 1, true, true
		}
		return 0, true, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return float64(i), true, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, false
		}
		return f, false, true
	default:
		return 0, false, false
	}
}

// numberOrZero is toNumber with the aggregate coercion rule applied:
// anything non-numeric counts as 0.
func numberOrZero(v interface{}) (float64, bool) {
	f, integral, ok := toNumber(v)
	if !ok {
		return 0, true
	}
	return f, integral
}

// stringify renders a scalar the way equality filters and lexical sorting
// see it. nil renders as the empty string.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// formatNumber prints a float without a trailing ".0" for whole numbers.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numbersEqual compares two floats with a relative epsilon.
func numbersEqual(left, right float64) bool {
	const epsilon = 1e-9
	diff := math.Abs(left - right)
	threshold := epsilon * max(1.0, math.Abs(left), math.Abs(right))
	return diff < threshold
}

// isTrue is the boolean-flag test: true for numeric 1, the string "1" and
// boolean true.
func isTrue(v interface{}) bool {
	f, _, ok := toNumber(v)
	return ok && f == 1
}

// isFalse mirrors isTrue for numeric 0, "0" and boolean false.
func isFalse(v interface{}) bool {
	f, _, ok := toNumber(v)
	return ok && f == 0
}
