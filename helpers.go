package surveymeta

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// IsValueEmpty reports whether v is nil, an empty string, an empty array, or
// an object whose values are all empty.
func IsValueEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case *Array:
		return t == nil || t.Len() == 0
	case map[string]any:
		for _, x := range t {
			if !IsValueEmpty(x) {
				return false
			}
		}
		return true
	}
	if _, isObj := v.(Object); isObj {
		_, ok := asObject(v)
		return !ok
	}
	return false
}

// truthy mirrors the loose "has a value" checks used when reading JSON input.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// parseLeadingInt parses the integer prefix of s. It returns NaN when s has
// no digits, matching loose string-to-number coercion on input.
func parseLeadingInt(s string) any {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return math.NaN()
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return math.NaN()
	}
	return n
}

// arrayItems returns the elements of an array-like value.
func arrayItems(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case ArrayValue:
		if a, ok := t.(*Array); ok && a == nil {
			return nil, false
		}
		return t.Items(), true
	}
	return nil, false
}

// ValuesEqual compares two JSON-like values. Numbers compare by value
// regardless of Go type, nil and "" are equivalent, and when ignoreOrder is
// set arrays compare as multisets.
func ValuesEqual(x, y any, ignoreOrder bool) bool {
	if x == nil && y == nil {
		return true
	}
	if (x == nil && y == "") || (y == nil && x == "") {
		return true
	}
	if fx, ok := toFloat(x); ok {
		fy, ok := toFloat(y)
		return ok && fx == fy
	}
	if ax, ok := arrayItems(x); ok {
		ay, ok := arrayItems(y)
		if !ok {
			return len(ax) == 0 && y == nil
		}
		return arraysEqual(ax, ay, ignoreOrder)
	}
	if _, ok := arrayItems(y); ok {
		return x == nil && IsValueEmpty(y)
	}
	if mx, ok := x.(map[string]any); ok {
		my, ok := y.(map[string]any)
		if !ok || len(mx) != len(my) {
			return false
		}
		for k, vx := range mx {
			vy, ok := my[k]
			if !ok || !ValuesEqual(vx, vy, ignoreOrder) {
				return false
			}
		}
		return true
	}
	if eq, ok := x.(interface{ Equals(other any) bool }); ok {
		return eq.Equals(y)
	}
	if x == nil || y == nil {
		return false
	}
	tx := reflect.TypeOf(x)
	if tx.Comparable() && tx == reflect.TypeOf(y) {
		return x == y
	}
	return reflect.DeepEqual(x, y)
}

func arraysEqual(x, y []any, ignoreOrder bool) bool {
	if len(x) != len(y) {
		return false
	}
	if !ignoreOrder {
		for i := range x {
			if !ValuesEqual(x[i], y[i], false) {
				return false
			}
		}
		return true
	}
	used := make([]bool, len(y))
	for _, vx := range x {
		found := false
		for j, vy := range y {
			if used[j] || !ValuesEqual(vx, vy, true) {
				continue
			}
			used[j] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}
