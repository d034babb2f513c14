// Package convert provides loose type conversion for broker payload values.
package convert

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ToFloat64 converts various numeric types to float64.
// OANDA reports most decimal quantities as JSON strings, so the string
// branch carries the bulk of the traffic. Returns 0 for unsupported types
// or parse failures.
func ToFloat64(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case uint64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	default:
		return 0
	}
}

// ToInt64 parses broker-side numeric identifiers (transaction ids, order ids)
// that arrive as JSON strings. Returns 0 when the value is empty or malformed.
func ToInt64(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	default:
		return 0
	}
}
