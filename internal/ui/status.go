package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// StatusModel represents the status bar component
type StatusModel struct {
	ErrMsg       string
	StatusType   string // "error", "success", or ""
	FilterQuery  string // Normalized query currently narrowing the catalog
	CursorIndex  int    // Current cursor position among visible items (1-based)
	VisibleCount int    // Number of items passing the filter
	TotalCount   int    // Total number of items in the catalog
	HelpVisible  bool   // Whether the help overlay is visible
	HelpKeyLabel string // Key label for the help hint (depends on key mode)
	NoColor      bool
	Width        int
}

// NewStatusModel creates a new status model
func NewStatusModel() StatusModel {
	return StatusModel{
		Width:        92, // Default width
		HelpKeyLabel: "F1",
	}
}

// Update handles messages for the status component
func (m StatusModel) Update(_ tea.Msg) (StatusModel, tea.Cmd) {
	// Status bar is passive - it just displays state
	return m, nil
}

// View renders the status bar
func (m StatusModel) View() string {
	// Base styling for the status panel; derive from theme and avoid ANSI when no-color.
	baseStyle := lipgloss.NewStyle()
	if !m.NoColor {
		th := CurrentTheme()
		if th.FooterBG != nil {
			baseStyle = baseStyle.Background(th.FooterBG)
		}
		if th.FooterFG != nil {
			baseStyle = baseStyle.Foreground(th.FooterFG)
		}
	}
	statusStyle := baseStyle
	message := ""

	switch {
	case m.ErrMsg != "" && m.StatusType == "success":
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusSuccess)
		message = m.ErrMsg
	case m.ErrMsg != "":
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusError)
		message = m.ErrMsg
	case m.HelpVisible:
		// Show help hint left-justified, no counter
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusColor)
		label := m.HelpKeyLabel
		if label == "" {
			label = "F1"
		}
		message = fmt.Sprintf("Help (%s): Press %s or Esc to close", label, label)
	case m.FilterQuery != "":
		// While a query narrows the catalog, surface how many items remain.
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusColor)
		message = fmt.Sprintf("Filter: '%s' - %d/%d", m.FilterQuery, m.VisibleCount, m.TotalCount)
	default:
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusColor)
		if m.VisibleCount > 0 && m.CursorIndex > 0 {
			message = fmt.Sprintf("%d/%d", m.CursorIndex, m.VisibleCount)
		}
	}

	// Pad the status bar to the window width (fallback to 92 if unknown)
	target := 92
	if m.Width > 0 {
		target = m.Width
	}

	if len(message) > target && target > 3 {
		message = message[:target-3] + "..."
	}

	// Left-justify the help hint; right-justify counters and messages
	msgLen := len(message)
	var padded string
	if m.HelpVisible {
		if msgLen < target {
			padded = message + strings.Repeat(" ", target-msgLen)
		} else {
			padded = message
		}
	} else {
		if msgLen < target {
			padded = strings.Repeat(" ", target-msgLen) + message
		} else {
			padded = message
		}
	}

	return statusStyle.Width(target).Render(padded) + "\n"
}

// SetWidth sets the width of the status bar
func (m *StatusModel) SetWidth(width int) {
	m.Width = width
}
