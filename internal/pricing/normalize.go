package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Number is a monetary or quantity value that tolerates loose input.
// Decoding never fails: anything that is not a finite number becomes 0.
type Number float64

// Float returns the value as a finite float64.
func (n Number) Float() float64 {
	return Finite(float64(n))
}

// UnmarshalJSON accepts numbers, numeric strings, booleans and null.
func (n *Number) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		*n = 0
		return nil
	}
	*n = Number(Coerce(raw))
	return nil
}

// MarshalJSON always writes a finite number.
func (n Number) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, n.Float(), 'g', -1, 64), nil
}

// Finite returns x, or 0 when x is NaN or infinite.
func Finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// ClampPercent returns Finite(x) floored at 0. There is no upper bound.
func ClampPercent(x float64) float64 {
	v := Finite(x)
	if v < 0 {
		return 0
	}
	return v
}

// Coerce converts an arbitrary decoded value into a finite number.
func Coerce(x any) float64 {
	switch v := x.(type) {
	case nil:
		return 0
	case Number:
		return v.Float()
	case float64:
		return Finite(v)
	case float32:
		return Finite(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case json.Number:
		return parseFinite(string(v))
	case string:
		return parseFinite(v)
	default:
		return 0
	}
}

func parseFinite(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Finite(f)
}

// Truthy converts a loosely typed flag. Strings are parsed as booleans
// first, so "false" and "0" are false; any other non-empty string is true.
func Truthy(x any) bool {
	switch v := x.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b
		}
		return v != ""
	case map[string]any, []any:
		return true
	default:
		return Coerce(x) != 0
	}
}

// Text converts a loosely typed scalar into a string. Objects, arrays and
// null become "".
func Text(x any) string {
	switch v := x.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// ParseTime reads an RFC 3339 timestamp. Anything else is the zero time.
func ParseTime(x any) time.Time {
	s, ok := x.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
