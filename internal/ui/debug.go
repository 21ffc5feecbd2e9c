package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// DebugModel represents the debug bar component
type DebugModel struct {
	Visible         bool
	NoColor         bool
	Width           int
	LastDebugOutput string // Cached output to prevent flicker
	LastDebugValues string // Hash of debug values to detect changes
}

// NewDebugModel creates a new debug model
func NewDebugModel() DebugModel {
	return DebugModel{
		Width: 92, // Default width
	}
}

// Update handles messages for the debug component
func (m DebugModel) Update(_ tea.Msg) (DebugModel, tea.Cmd) {
	// Debug bar is passive - updates are handled by the parent model via syncDebug
	return m, nil
}

// View renders the debug bar if visible
func (m DebugModel) View() string {
	if !m.Visible {
		return ""
	}

	// Return cached output if available
	if m.LastDebugOutput != "" {
		return m.LastDebugOutput
	}

	return ""
}

// UpdateDebugInfo updates the debug information and regenerates output if state changed
func (m *DebugModel) UpdateDebugInfo(stateKey string, debugInfo DebugInfo) {
	// Only regenerate if state changed
	if m.LastDebugValues != stateKey {
		debugStyle := lipgloss.NewStyle()
		if !m.NoColor {
			debugStyle = debugStyle.Foreground(CurrentTheme().DebugColor)
		}

		message := fmt.Sprintf("DBG: win=%dx%d cat=%d titleW=%d detW=%d | items=%d/%d cursor=%d top=%d view=%s | typing=%v detail=%v help=%v | query=%q first=%q | layout: ih=%d ch=%d st=%d dh=%d fh=%d",
			debugInfo.WinWidth, debugInfo.WinHeight, debugInfo.CatalogHeight,
			debugInfo.TitleColWidth, debugInfo.DetailsColWidth,
			debugInfo.VisibleItems, debugInfo.TotalItems, debugInfo.Cursor, debugInfo.ScrollTop,
			debugInfo.ViewMode,
			debugInfo.TypingActive, debugInfo.DetailOpen, debugInfo.HelpVisible,
			debugInfo.Query, debugInfo.FirstCardPreview,
			debugInfo.LayoutInputHeight, debugInfo.LayoutCatalogHeight,
			debugInfo.LayoutStatusHeight, debugInfo.LayoutDebugHeight, debugInfo.LayoutFooterHeight)

		// Pad to configured width (defaults to 92) to align with other bars
		target := 92
		if m.Width > 0 {
			target = m.Width
		}
		padded := message
		if len(padded) > target {
			padded = padded[:target-3] + "..."
		}
		if len(padded) < target {
			padded += strings.Repeat(" ", target-len(padded))
		}

		m.LastDebugOutput = debugStyle.Render(padded) + "\n"
		m.LastDebugValues = stateKey
	}
}

// DebugInfo contains all the debug information to display
type DebugInfo struct {
	WinWidth         int
	WinHeight        int
	CatalogHeight    int
	TitleColWidth    int
	DetailsColWidth  int
	VisibleItems     int
	TotalItems       int
	Cursor           int
	ScrollTop        int
	ViewMode         string
	TypingActive     bool
	DetailOpen       bool
	HelpVisible      bool
	Query            string
	FirstCardPreview string // First few chars of the first visible card
	// Layout information
	LayoutInputHeight   int
	LayoutCatalogHeight int
	LayoutStatusHeight  int
	LayoutDebugHeight   int
	LayoutFooterHeight  int
}

// SetWidth sets the width of the debug bar
func (m *DebugModel) SetWidth(width int) {
	m.Width = width
}

// SetVisible sets the visibility of the debug bar
func (m *DebugModel) SetVisible(visible bool) {
	m.Visible = visible
	if !visible {
		// Clear cache when hidden
		m.LastDebugOutput = ""
		m.LastDebugValues = ""
	}
}
