package catalog

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Stringify returns a compact single-value representation for an arbitrary
// decoded node. Strings pass through unchanged, other scalars print in
// their natural form, and maps and slices render as compact JSON so they
// stay on one line. Display paths that need newline flattening handle it
// at render time.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(t)
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	default:
		// Typed containers and structs from embedders also get JSON so the
		// output matches what the same data would look like after loading.
		rv := reflect.ValueOf(v)
		switch rv.Kind() { //nolint:exhaustive // only container kinds need JSON marshaling
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
		return fmt.Sprintf("%v", v)
	}
}
