package jira

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// numericRunes keeps digits, sign and decimal point when scrubbing strings
// like "8 points" before parsing.
func numericRunes(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// coerceNumber converts the loosely-typed values Jira returns for custom
// fields into a float64. It accepts plain numbers, numeric strings, and
// option objects carrying a "value" or "score" member.
func coerceNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(numericRunes(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case map[string]any:
		if inner, ok := v["value"]; ok {
			if parsed, ok := coerceNumber(inner); ok {
				return parsed, true
			}
		}
		if inner, ok := v["score"]; ok {
			if parsed, ok := coerceNumber(inner); ok {
				return parsed, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}
