package ui

import "strings"

// ViewMode selects how the visible catalog items render.
type ViewMode string

const (
	// ViewModeList renders visible items as cards (title, subtitle, badges).
	ViewModeList ViewMode = "list"
	// ViewModeTable renders visible items as a TITLE/DETAILS table.
	ViewModeTable ViewMode = "table"
)

// DefaultViewMode is used when nothing selects a view.
const DefaultViewMode = ViewModeList

// ParseViewMode maps a config or flag value onto a ViewMode. Unknown values
// fall back to the default so a typo in a config file degrades instead of
// failing the run.
func ParseViewMode(s string) ViewMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return ViewModeTable
	case "list", "cards", "":
		return ViewModeList
	default:
		return DefaultViewMode
	}
}

// toggled returns the other view mode.
func (v ViewMode) toggled() ViewMode {
	if v == ViewModeTable {
		return ViewModeList
	}
	return ViewModeTable
}
