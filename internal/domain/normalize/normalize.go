// Package normalize converts event payload field names and values into the
// canonical forms used by the aggregate store. All transforms are pure:
// given the same images they produce the same output.
package normalize

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Fields canonicalizes every key of raw. The per-event-kind overrides
// dictionary wins over the generic snake_case conversion; overrides exist for
// external names whose canonical form is not a simple case conversion
// (e.g. "otherFee" → "buyer_adj").
func Fields(raw map[string]any, overrides map[string]string) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[canonicalName(k, overrides)] = v
	}
	return out
}

// RemovedAttributes diffs the old image's field set against the new image's:
// any key present in old but absent in new is considered removed upstream and
// must be removed from the store on the next write. Names are mapped through
// the same overrides as Fields.
func RemovedAttributes(newImage, oldImage map[string]any, overrides map[string]string) []string {
	var removed []string
	for k := range oldImage {
		if _, ok := newImage[k]; ok {
			continue
		}
		removed = append(removed, canonicalName(k, overrides))
	}
	return removed
}

func canonicalName(k string, overrides map[string]string) string {
	if mapped, ok := overrides[k]; ok {
		return mapped
	}
	return SnakeCase(k)
}

// SnakeCase converts camelCase and PascalCase identifiers to snake_case.
// Runs of capitals collapse ("VIN" → "vin", "VINNumber" → "vin_number").
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && runes[i-1] != '_')) && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToFloat coerces a payload leaf to a float64; blank and non-numeric values
// coerce to zero so aggregation never fails on dirty data.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		var num json.Number = json.Number(s)
		f, err := num.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToString coerces a payload leaf to its string form.
func ToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

// MapValue digs a nested map out of a payload, returning an empty map when
// any step is missing or has the wrong shape.
func MapValue(m map[string]any, path ...string) map[string]any {
	cur := m
	for _, p := range path {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return map[string]any{}
		}
		cur = next
	}
	return cur
}

// ListValue digs a nested list out of a payload, returning nil when absent.
func ListValue(m map[string]any, path ...string) []any {
	if len(path) == 0 {
		return nil
	}
	parent := m
	if len(path) > 1 {
		parent = MapValue(m, path[:len(path)-1]...)
	}
	list, _ := parent[path[len(path)-1]].([]any)
	return list
}
