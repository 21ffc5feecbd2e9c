package catalog

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// nodeAtPath walks a dotted path into a decoded document. Keys are
// separated by '.'; numeric segments index arrays; bracket notation is
// accepted as an alternative ("works[0]" and "works.0" are the same path).
func nodeAtPath(root any, path string) (any, error) {
	cur := root
	for _, step := range parsePath(path) {
		next, err := navigateStep(cur, step)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// parsePath splits a path into navigation steps, handling both dot and
// bracket notation.
// Examples: "works.0" -> ["works", "0"]
//
//	"works[0]" -> ["works", "0"]
//	"works[0].tags" -> ["works", "0", "tags"]
//	"regions.asia.titles[1]" -> ["regions", "asia", "titles", "1"]
func parsePath(path string) []string {
	var parts []string
	var current strings.Builder

	for i := 0; i < len(path); i++ {
		ch := path[i]
		switch ch {
		case '.':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		case '[':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			// Find the closing bracket
			j := i + 1
			for j < len(path) && path[j] != ']' {
				j++
			}
			if j < len(path) {
				parts = append(parts, path[i+1:j])
				i = j
			}
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// navigateStep descends one step (key or index) into the data structure.
func navigateStep(cur any, step string) (any, error) {
	key := step
	if strings.HasPrefix(key, `"`) && strings.HasSuffix(key, `"`) && len(key) > 1 {
		key = key[1 : len(key)-1]
	}

	switch t := cur.(type) {
	case map[string]any:
		v, ok := t[key]
		if !ok {
			return nil, fmt.Errorf("key '%s' not found", key)
		}
		return v, nil
	case []any:
		idx, err := strconv.Atoi(step)
		if err != nil {
			return nil, fmt.Errorf("expected numeric index into array but got '%s'", step)
		}
		if idx < 0 || idx >= len(t) {
			return nil, fmt.Errorf("index %d out of range", idx)
		}
		return t[idx], nil
	default:
		rv := reflect.ValueOf(cur)
		if !rv.IsValid() {
			return nil, fmt.Errorf("cannot descend into %T at '%s'", cur, step)
		}
		for rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return nil, fmt.Errorf("cannot descend into %T at '%s'", cur, step)
			}
			rv = rv.Elem()
		}

		switch rv.Kind() { //nolint:exhaustive // only container kinds are navigable
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return nil, fmt.Errorf("cannot descend into %T at '%s'", cur, step)
			}
			value := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if !value.IsValid() {
				return nil, fmt.Errorf("key '%s' not found", key)
			}
			return value.Interface(), nil
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(step)
			if err != nil {
				return nil, fmt.Errorf("expected numeric index into array but got '%s'", step)
			}
			if idx < 0 || idx >= rv.Len() {
				return nil, fmt.Errorf("index %d out of range", idx)
			}
			return rv.Index(idx).Interface(), nil
		default:
			return nil, fmt.Errorf("cannot descend into %T at '%s'", cur, step)
		}
	}
}

// asEntrySlice converts a resolved node to []any. Typed slices (e.g.
// []map[string]any from embedders) are widened element by element.
func asEntrySlice(node any) ([]any, bool) {
	if node == nil {
		return nil, false
	}
	if arr, ok := node.([]any); ok {
		return arr, true
	}

	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	entries := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		entries[i] = rv.Index(i).Interface()
	}
	return entries, true
}
