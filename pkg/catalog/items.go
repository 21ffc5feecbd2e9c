package catalog

import (
	"reflect"
	"sort"
	"strings"

	"github.com/oakwood-commons/winnow/pkg/filter"
)

// FieldSpec names the entry fields the UI and output paths read. Only
// Title participates in filtering; the rest shape how entries render.
type FieldSpec struct {
	// Title is the field carrying an entry's display title.
	Title string

	// Subtitle is rendered under the title in the card list.
	Subtitle string

	// Badges are short fields rendered inline after the title.
	Badges []string

	// Secondary are fields rendered as a key: value line per card.
	Secondary []string
}

// DefaultFieldSpec returns the conventional field mapping for catalog
// documents: title only.
func DefaultFieldSpec() FieldSpec {
	return FieldSpec{Title: "title"}
}

// Items converts catalog entries into filter items in document order. Each
// item's title comes from Title and its Source keeps the full entry for
// rendering. Index and Visible are left for filter.New to assign.
func Items(cat Catalog, spec FieldSpec) []filter.Item {
	items := make([]filter.Item, len(cat.Entries))
	for i, entry := range cat.Entries {
		items[i] = filter.Item{
			Title:  Title(entry, spec.Title),
			Source: entry,
		}
	}
	return items
}

// Title derives an entry's display title: the designated title field when
// the entry carries a non-empty one, otherwise the entry's own text
// content. Scalar entries stringify directly; object entries without a
// usable title field flatten to their scalar field values in key order.
func Title(entry any, titleField string) string {
	m, ok := entry.(map[string]any)
	if !ok {
		return Stringify(entry)
	}
	if titleField != "" {
		if v, ok := m[titleField]; ok {
			if s := Stringify(v); s != "" {
				return s
			}
		}
	}
	return textContent(m)
}

// textContent joins an object's scalar field values in sorted key order,
// approximating what the entry reads as when flattened to plain text.
// Nested maps and arrays are skipped.
func textContent(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(m))
	for _, k := range keys {
		if !isScalar(m[k]) {
			continue
		}
		if s := Stringify(m[k]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Field returns the named field of an object entry. The bool is false when
// the entry is not an object or the field is absent.
func Field(entry any, name string) (any, bool) {
	if name == "" {
		return nil, false
	}
	m, ok := entry.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// isScalar reports whether v renders as a single plain value.
func isScalar(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case map[string]any, []any:
		return false
	}
	switch reflect.ValueOf(v).Kind() { //nolint:exhaustive // containers are the only non-scalars
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return false
	default:
		return true
	}
}
