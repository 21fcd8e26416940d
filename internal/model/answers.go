package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// AnswersMatch reports whether submitted equals correct once both are sorted.
// This is sorted-list equality, not set equality: duplicates count.
func AnswersMatch(submitted, correct []any) bool {
	a, err := json.Marshal(sortedValues(submitted))
	if err != nil {
		return false
	}
	b, err := json.Marshal(sortedValues(correct))
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// sortedValues orders values by their string form, keeping equal keys stable
func sortedValues(vs []any) []any {
	out := make([]any, 0, len(vs))
	out = append(out, vs...)
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

func sortKey(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = sortKey(e)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}
