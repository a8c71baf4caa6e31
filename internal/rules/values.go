package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"watchdog/pkg/contracts/domain"
)

// IsAbsent reports whether a cell value counts as missing. nil, empty or
// whitespace-only strings, and NaN floats are all treated as absent.
func IsAbsent(v domain.Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// AsFloat coerces a cell value to float64. Strings are parsed after trimming;
// integer and float types convert directly. Booleans, times, and anything
// else are not numeric.
func AsFloat(v domain.Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// KeyString renders a cell value as the canonical key used for uniqueness
// tracking and set membership. Numeric strings and numbers that print the
// same compare equal.
func KeyString(v domain.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
