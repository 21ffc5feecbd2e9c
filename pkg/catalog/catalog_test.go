package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindExplicitPath(t *testing.T) {
	doc := map[string]any{
		"site_name": "shelf",
		"data": map[string]any{
			"works": []any{
				map[string]any{"title": "Apple Pie"},
				map[string]any{"title": "Banana Bread"},
			},
		},
	}

	cat, err := Bind(doc, BindOptions{Collection: "data.works"})
	require.NoError(t, err)
	assert.Equal(t, "shelf", cat.SiteName)
	assert.Equal(t, "data.works", cat.Collection)
	assert.Len(t, cat.Entries, 2)
}

func TestBindExplicitPathBracketNotation(t *testing.T) {
	doc := map[string]any{
		"releases": []any{
			map[string]any{
				"items": []any{
					map[string]any{"title": "first"},
				},
			},
		},
	}

	cat, err := Bind(doc, BindOptions{Collection: "releases[0].items"})
	require.NoError(t, err)
	assert.Len(t, cat.Entries, 1)
}

func TestBindAutoRootArray(t *testing.T) {
	doc := []any{
		map[string]any{"title": "a"},
		map[string]any{"title": "b"},
	}

	cat, err := Bind(doc, BindOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", cat.Collection)
	assert.Len(t, cat.Entries, 2)
}

func TestBindAutoWorksKey(t *testing.T) {
	doc := map[string]any{
		"site_name": "catalog",
		"works": []any{
			map[string]any{"title": "Apple Pie"},
		},
		"extra": "ignored",
	}

	cat, err := Bind(doc, BindOptions{})
	require.NoError(t, err)
	assert.Equal(t, "works", cat.Collection)
	assert.Equal(t, "catalog", cat.SiteName)
	assert.Len(t, cat.Entries, 1)
}

func TestBindAutoWorksKeyEmptyArray(t *testing.T) {
	// An empty works array is still a binding: zero entries, not absent.
	doc := map[string]any{"works": []any{}}

	cat, err := Bind(doc, BindOptions{})
	require.NoError(t, err)
	assert.Equal(t, "works", cat.Collection)
	assert.Empty(t, cat.Entries)
}

func TestBindAutoFirstObjectArray(t *testing.T) {
	// Without a works key, the first array-of-objects in sorted key order wins.
	doc := map[string]any{
		"zebras": []any{map[string]any{"name": "z"}},
		"apples": []any{map[string]any{"name": "a"}},
		"tags":   []any{"just", "strings"},
	}

	cat, err := Bind(doc, BindOptions{})
	require.NoError(t, err)
	assert.Equal(t, "apples", cat.Collection)
	assert.Len(t, cat.Entries, 1)
}

func TestBindNoCollection(t *testing.T) {
	tests := []struct {
		name string
		doc  any
	}{
		{name: "nil document", doc: nil},
		{name: "scalar document", doc: "just a string"},
		{name: "map without arrays", doc: map[string]any{"a": 1, "b": "two"}},
		{name: "map with scalar-only arrays", doc: map[string]any{"tags": []any{"x", "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(tt.doc, BindOptions{})
			assert.ErrorIs(t, err, ErrNoCollection)
		})
	}
}

func TestBindExplicitPathErrors(t *testing.T) {
	// Explicit paths that dangle must error in their own right, not carry
	// the silent-degradation sentinel: a typo'd --collection should fail
	// the run, not print nothing.
	doc := map[string]any{
		"works": []any{map[string]any{"title": "a"}},
		"meta":  map[string]any{"count": 1},
	}

	t.Run("missing key", func(t *testing.T) {
		_, err := Bind(doc, BindOptions{Collection: "missing"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoCollection)
		assert.Contains(t, err.Error(), `"missing"`)
	})

	t.Run("typo next to a valid collection", func(t *testing.T) {
		_, err := Bind(doc, BindOptions{Collection: "wroks"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoCollection)
	})

	t.Run("path to non-array", func(t *testing.T) {
		_, err := Bind(doc, BindOptions{Collection: "meta"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoCollection)
		assert.Contains(t, err.Error(), "not an array")
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := Bind(doc, BindOptions{Collection: "works[5].tags"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoCollection)
	})
}

func TestBindExplicitPathScalarArray(t *testing.T) {
	// Explicit paths accept scalar arrays; titles come from stringification.
	doc := map[string]any{"tags": []any{"alpha", "bravo"}}

	cat, err := Bind(doc, BindOptions{Collection: "tags"})
	require.NoError(t, err)
	assert.Equal(t, []any{"alpha", "bravo"}, cat.Entries)
}

func TestBindTypedSlice(t *testing.T) {
	// Embedders may hand over typed slices; they widen to []any.
	doc := map[string]any{
		"works": []map[string]any{
			{"title": "one"},
			{"title": "two"},
		},
	}

	cat, err := Bind(doc, BindOptions{Collection: "works"})
	require.NoError(t, err)
	require.Len(t, cat.Entries, 2)
	assert.IsType(t, map[string]any{}, cat.Entries[0])
}

func TestNodeAtPath(t *testing.T) {
	doc := map[string]any{
		"regions": map[string]any{
			"asia": map[string]any{
				"titles": []any{"first", "second"},
			},
		},
	}

	node, err := nodeAtPath(doc, "regions.asia.titles[1]")
	require.NoError(t, err)
	assert.Equal(t, "second", node)

	node, err = nodeAtPath(doc, "regions.asia.titles.0")
	require.NoError(t, err)
	assert.Equal(t, "first", node)

	_, err = nodeAtPath(doc, "regions.europe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = nodeAtPath(doc, "regions.asia.titles.x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numeric index")
}
