package model

import (
	"strconv"
	"strings"
)

var affirmative = map[string]struct{}{
	"true": {}, "t": {}, "yes": {}, "y": {}, "1": {},
	"是": {}, "含税": {}, "含运": {}, "含税运": {}, "含运费": {}, "含税含运": {}, "含税/含运": {}, "包邮": {},
}

var negative = map[string]struct{}{
	"false": {}, "f": {}, "no": {}, "n": {}, "0": {},
	"否": {}, "不含税": {}, "不含运": {}, "不含运费": {}, "不含税不含运": {}, "不含税/不含运": {},
}

// CoerceBool maps booleans, numbers and affirmative/negative tokens
// (English and Chinese) to a bool. ok is false when the value is absent
// or not recognizable.
func CoerceBool(v any) (val, ok bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if _, hit := affirmative[s]; hit {
			return true, true
		}
		if _, hit := negative[s]; hit {
			return false, true
		}
	}
	return false, false
}

// CoerceShipping is CoerceBool plus the annotation case: unrecognized
// non-empty text is kept verbatim.
func CoerceShipping(v any) Shipping {
	if b, ok := CoerceBool(v); ok {
		return Shipping{Yes: b}
	}
	if s, isStr := v.(string); isStr {
		if t := strings.TrimSpace(s); t != "" {
			return Shipping{Text: t}
		}
	}
	return Shipping{}
}

func CoerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func CoerceInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i
		}
	}
	return 0
}

func CoerceString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
