// Package extract projects record fields into flat report columns using JSONPath.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/topcontainers/internal/domain"
)

// Rules maps a column name to a JSONPath expression.
type Rules map[string]string

// Result reports how a single rule fared.
type Result struct {
	Name    string
	Success bool
	Message string
}

// Apply evaluates every rule against rec.
// A failing rule is reported in its Result; other rules still run.
func Apply(rec domain.Record, rules Rules) (map[string]string, []Result) {
	if len(rules) == 0 {
		return map[string]string{}, []Result{}
	}

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if rec == nil {
		out := make([]Result, 0, len(keys))
		for _, name := range keys {
			out = append(out, Result{
				Name:    name,
				Message: fmt.Sprintf("extract %q (%s): no record", name, strings.TrimSpace(rules[name])),
			})
		}
		return map[string]string{}, out
	}

	doc := map[string]any(rec)
	values := map[string]string{}
	results := make([]Result, 0, len(keys))

	for _, name := range keys {
		expr := strings.TrimSpace(rules[name])
		s, err := eval(doc, expr)
		if err != nil {
			results = append(results, Result{
				Name:    name,
				Message: fmt.Sprintf("extract %q (%s): %v", name, expr, err),
			})
			continue
		}
		values[name] = s
		results = append(results, Result{Name: name, Success: true, Message: fmt.Sprintf("extracted %q", name)})
	}

	return values, results
}

// First returns the first expression that yields a value, or "".
func First(rec domain.Record, exprs ...string) string {
	if rec == nil {
		return ""
	}
	doc := map[string]any(rec)
	for _, expr := range exprs {
		if s, err := eval(doc, strings.TrimSpace(expr)); err == nil {
			return s
		}
	}
	return ""
}

func eval(doc map[string]any, expr string) (string, error) {
	if expr == "" {
		return "", fmt.Errorf("empty jsonpath expression")
	}
	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return "", fmt.Errorf("jsonpath error: %w", err)
	}
	if isEmptyValue(val) {
		return "", fmt.Errorf("no value found")
	}
	s, err := toString(val)
	if err != nil {
		return "", fmt.Errorf("cannot convert value to string: %w", err)
	}
	return s, nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func toString(v any) (string, error) {
	// wildcard and filter expressions return a slice
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", fmt.Errorf("empty array")
		}
		if len(arr) == 1 {
			return toString(arr[0])
		}
		b, err := json.Marshal(arr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return fmt.Sprint(t), nil
	case bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}
