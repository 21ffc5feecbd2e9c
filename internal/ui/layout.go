package ui

// LayoutManager manages the layout calculations for the TUI
type LayoutManager struct {
	width  int
	height int
}

// AutoTitleWidthFunc computes a preferred title column width (e.g., based on the
// visible rows) capped by a provided maximum. If nil, CalculateColumnWidths
// treats the provided titleColWidth as the fixed width/cap.
type AutoTitleWidthFunc func(maxPreset int) int

// ComponentHeights defines the height requirements for each component
type ComponentHeights struct {
	InputHeight   int // Filter input panel including its border (3 lines)
	CatalogHeight int // Content lines inside the catalog panel border
	StatusHeight  int // Always 1 line
	DebugHeight   int // 0 or 1 line
	FooterHeight  int // Always 1 line
}

// Constants for component heights and widths
const (
	InputPanelLines      = 3 // Border, input line, border
	StatusLineCount      = 1
	FooterLineCount      = 1
	PanelBorderLines     = 2 // Top + bottom border of the catalog panel
	TableHeaderLines     = 2 // Header + header border inside the table view
	MinCatalogHeight     = 3 // Minimum content lines in the catalog panel
	ColumnSeparatorWidth = 3 // Table component adds internal spacing between columns
	FilterPromptWidth    = 2 // Space for the input prompt characters
	PanelSideWidth       = 4 // Side borders plus one cell of padding each side
	MinDetailsColWidth   = 10
	MinInputWidth        = 20
	DefaultTitleColWidth = 30
	DefaultDetailsWidth  = 60
)

// NewLayoutManager creates a new layout manager
func NewLayoutManager(width, height int) *LayoutManager {
	return &LayoutManager{
		width:  width,
		height: height,
	}
}

// SetDimensions updates the layout manager dimensions
func (lm *LayoutManager) SetDimensions(width, height int) {
	lm.width = width
	lm.height = height
}

// CalculateHeights calculates component heights based on window size and UI state.
// The debug line is reserved whenever reserveDebugLine is true (we always reserve
// it in debug mode to keep the bars stable while events stream in).
func (lm *LayoutManager) CalculateHeights(reserveDebugLine bool) ComponentHeights {
	heights := ComponentHeights{
		InputHeight:  InputPanelLines,
		StatusHeight: StatusLineCount,
		FooterHeight: FooterLineCount,
	}

	if reserveDebugLine {
		heights.DebugHeight = 1
	}

	// Fixed space that cannot be squeezed (input panel + bars + catalog borders)
	nonCatalog := heights.InputHeight +
		heights.StatusHeight +
		heights.FooterHeight +
		heights.DebugHeight +
		PanelBorderLines

	remaining := lm.height - nonCatalog
	if remaining < 0 {
		remaining = 0
	}
	// Prefer at least MinCatalogHeight by dropping the debug line first.
	if remaining < MinCatalogHeight && heights.DebugHeight > 0 {
		heights.DebugHeight = 0
		remaining = lm.height - nonCatalog + 1
		if remaining < 0 {
			remaining = 0
		}
	}

	heights.CatalogHeight = remaining

	return heights
}

// CalculateColumnWidths calculates table column widths based on window width
func (lm *LayoutManager) CalculateColumnWidths(titleColWidth int, configuredDetailsWidth int, autoTitle AutoTitleWidthFunc) (titleWidth, detailsWidth int) {
	// Resolve title width: allow caller to auto-shrink based on data, capped by the preset.
	preset := titleColWidth
	if preset <= 0 {
		preset = DefaultTitleColWidth
	}
	if autoTitle != nil {
		titleWidth = autoTitle(preset)
	}
	if titleWidth <= 0 {
		titleWidth = preset
	}

	// If the details column width is configured, use it (but ensure it fits)
	if configuredDetailsWidth > 0 {
		if lm.width > 0 {
			maxDetailsWidth := lm.width - PanelSideWidth - titleWidth - ColumnSeparatorWidth
			if configuredDetailsWidth > maxDetailsWidth {
				detailsWidth = maxDetailsWidth
			} else {
				detailsWidth = configuredDetailsWidth
			}
			if detailsWidth < MinDetailsColWidth {
				detailsWidth = MinDetailsColWidth
			}
		} else {
			detailsWidth = configuredDetailsWidth
		}
	} else {
		// Calculate the details width from the remaining space
		if lm.width > 0 {
			detailsWidth = lm.width - PanelSideWidth - titleWidth - ColumnSeparatorWidth
			if detailsWidth < MinDetailsColWidth {
				detailsWidth = MinDetailsColWidth
			}
		} else {
			detailsWidth = DefaultDetailsWidth
		}
	}

	return titleWidth, detailsWidth
}

// CalculateInputWidth calculates the width for the filter input inside its panel
func (lm *LayoutManager) CalculateInputWidth() int {
	if lm.width > 0 {
		inputWidth := lm.width - PanelSideWidth - FilterPromptWidth
		if inputWidth < MinInputWidth {
			return MinInputWidth
		}
		return inputWidth
	}
	return 80 // Default width
}

// GetWidth returns the current width
func (lm *LayoutManager) GetWidth() int {
	return lm.width
}

// GetHeight returns the current height
func (lm *LayoutManager) GetHeight() int {
	return lm.height
}
