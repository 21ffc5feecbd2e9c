package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

// sampleEntries provides a small catalog for testing. Titles deliberately mix
// case so normalization tests have something to chew on.
func sampleEntries() []any {
	return []any{
		map[string]any{
			"title":        "Apple Pie",
			"description":  "Classic double-crust pie with cinnamon",
			"tags":         []any{"dessert", "fruit"},
			"year":         2019,
			"official_url": "https://example.com/works/apple-pie",
		},
		map[string]any{
			"title":       "Banana Bread",
			"description": "Quick loaf made from overripe bananas",
			"tags":        []any{"bread"},
			"year":        2021,
		},
		map[string]any{
			"title":       "apple tart",
			"description": "Open-faced tart with thin apple slices",
			"tags":        []any{"dessert"},
			"year":        2023,
		},
		map[string]any{
			"title":       "Cherry Cobbler",
			"description": "Biscuit-topped cobbler with sour cherries",
			"tags":        []any{"dessert", "fruit"},
			"year":        2020,
		},
	}
}

// sampleItems converts the sample entries into filter items the way the CLI
// does, titles in document order.
func sampleItems() []filter.Item {
	entries := sampleEntries()
	items := make([]filter.Item, len(entries))
	for i, entry := range entries {
		items[i] = filter.Item{
			Title:  catalog.Title(entry, "title"),
			Source: entry,
		}
	}
	return items
}

// sampleFieldSpec maps the sample entries' fields the way the CLI defaults do.
func sampleFieldSpec() catalog.FieldSpec {
	return catalog.FieldSpec{
		Title:     "title",
		Subtitle:  "description",
		Badges:    []string{"tags"},
		Secondary: []string{"year"},
	}
}

// newTestModel builds a model over the sample items with a fixed window size
// so layout-dependent behavior is deterministic.
func newTestModel() *Model {
	m := InitialModel(sampleItems())
	m.WinWidth = 92
	m.WinHeight = 30
	m.applyLayout(true)
	return &m
}

// pressKey routes a key message through Update and keeps the model pointer
// stable for the caller.
func pressKey(t *testing.T, m *Model, msg tea.KeyPressMsg) tea.Cmd {
	t.Helper()
	updated, cmd := m.Update(msg)
	um, ok := updated.(*Model)
	if !ok {
		t.Fatalf("Update returned %T, expected *Model", updated)
	}
	*m = *um
	return cmd
}

// typeString feeds each rune of s through Update as a printable key press.
func typeString(t *testing.T, m *Model, s string) {
	t.Helper()
	for _, r := range s {
		pressKey(t, m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// visibleTitles returns the titles of the currently visible items.
func visibleTitles(m *Model) []string {
	visible := m.Controller.Visible()
	titles := make([]string, len(visible))
	for i, it := range visible {
		titles[i] = it.Title
	}
	return titles
}

func titlesEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func trimTrailingEmptyLines(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
