// Package catalog binds a decoded document to its collection of entries
// and derives the fields the filter and renderers read from each entry.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoCollection reports that auto-detection found no entry collection
// to bind. Callers that degrade silently check for it with errors.Is and
// fall back to an inert controller instead of surfacing an error.
// Explicit-path resolution failures never carry this sentinel.
var ErrNoCollection = errors.New("no collection to bind")

// defaultCollectionKey is tried first during auto-detection, matching the
// conventional catalog schema of a map with a "works" array.
const defaultCollectionKey = "works"

// Catalog is a bound collection of entries from a loaded document.
type Catalog struct {
	// SiteName carries the document's site_name field when present.
	SiteName string

	// Collection is the resolved path of the entry array. Empty when the
	// document root itself is the collection.
	Collection string

	// Entries holds the collection's elements in document order.
	Entries []any
}

// BindOptions configures Bind.
type BindOptions struct {
	// Collection is a dot path to the entry array, e.g. "works" or
	// "data.works" or "releases[0].items". Empty means auto-detect.
	Collection string
}

// Bind locates the entry collection inside doc. With an explicit path the
// target must resolve to an array; a path that dangles or lands on a
// non-array returns its own error, never ErrNoCollection, so a typo'd
// path surfaces instead of degrading into an empty run. With
// auto-detection the root array is used directly, then the "works" key,
// then the first array-of-objects value in sorted key order; a document
// with nothing to auto-detect yields ErrNoCollection.
func Bind(doc any, opts BindOptions) (Catalog, error) {
	cat := Catalog{}
	if doc == nil {
		return cat, ErrNoCollection
	}

	if m, ok := doc.(map[string]any); ok {
		if name, ok := m["site_name"].(string); ok {
			cat.SiteName = name
		}
	}

	if path := strings.TrimSpace(opts.Collection); path != "" {
		node, err := nodeAtPath(doc, path)
		if err != nil {
			return cat, fmt.Errorf("collection %q: %w", path, err)
		}
		entries, ok := asEntrySlice(node)
		if !ok {
			return cat, fmt.Errorf("collection %q is not an array", path)
		}
		cat.Collection = path
		cat.Entries = entries
		return cat, nil
	}

	switch node := doc.(type) {
	case []any:
		cat.Entries = node
		return cat, nil
	case map[string]any:
		if entries, ok := asEntrySlice(node[defaultCollectionKey]); ok {
			cat.Collection = defaultCollectionKey
			cat.Entries = entries
			return cat, nil
		}

		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := node[k].([]any); ok && isObjectArray(arr) {
				cat.Collection = k
				cat.Entries = arr
				return cat, nil
			}
		}
	}

	return cat, ErrNoCollection
}

// isObjectArray checks if arr is a non-empty array whose elements are all maps.
func isObjectArray(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	for _, el := range arr {
		if _, ok := el.(map[string]any); !ok {
			return false
		}
	}
	return true
}
