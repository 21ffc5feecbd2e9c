package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// FooterModel represents the footer component with the action key bindings
type FooterModel struct {
	NoColor bool
	Width   int
	KeyMode KeyMode // Current keybinding mode
}

// NewFooterModel creates a new footer model
func NewFooterModel() FooterModel {
	return FooterModel{
		Width:   92, // Default width
		KeyMode: DefaultKeyMode,
	}
}

// Update handles messages for the footer component
func (m FooterModel) Update(_ tea.Msg) (FooterModel, tea.Cmd) {
	// Footer is passive - it just displays key bindings
	return m, nil
}

// View renders the footer with the key bindings for the active mode
func (m FooterModel) View() string {
	fkeyStyle := lipgloss.NewStyle()
	if !m.NoColor {
		// Grey background with white text across the key labels
		fkeyStyle = fkeyStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240")).Bold(true)
	} else {
		// In no-color mode still highlight keys with true black on white
		fkeyStyle = fkeyStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
	}

	parts := []string{}

	appendItems := func(menu MenuConfig) {
		for _, actionName := range menuActionOrder {
			item, ok := menu.Items[actionName]
			if !ok || !item.Enabled || item.Label == "" {
				continue
			}
			key := keyLabelForMode(item.Keys, m.KeyMode)
			if key != "" {
				parts = append(parts, fkeyStyle.Render(key), item.Label)
			}
		}
	}

	// Render keybindings dynamically from menu config based on mode
	appendItems(CurrentMenuConfig())

	// Fallback to defaults if everything was filtered/disabled
	if len(parts) == 0 {
		appendItems(DefaultMenuConfig())
	}

	// Last resort: hardcoded defaults to avoid an empty footer
	if len(parts) == 0 {
		switch m.KeyMode {
		case KeyModeVim:
			parts = []string{
				fkeyStyle.Render("?"), "Help",
				fkeyStyle.Render("y"), "Copy",
				fkeyStyle.Render("o"), "Open",
				fkeyStyle.Render("v"), "View",
				fkeyStyle.Render("q"), "Quit",
			}
		case KeyModeEmacs:
			parts = []string{
				fkeyStyle.Render("F1"), "Help",
				fkeyStyle.Render("M-w"), "Copy",
				fkeyStyle.Render("M-o"), "Open",
				fkeyStyle.Render("C-t"), "View",
				fkeyStyle.Render("C-q"), "Quit",
			}
		default:
			parts = []string{
				fkeyStyle.Render("F1"), "Help",
				fkeyStyle.Render("F5"), "Copy",
				fkeyStyle.Render("F7"), "Open",
				fkeyStyle.Render("F8"), "View",
				fkeyStyle.Render("F10"), "Quit",
			}
		}
	}

	helpLine := strings.Join(parts, " ")

	// Add a mode indicator on the right when not in the default key mode
	if m.KeyMode != DefaultKeyMode && m.KeyMode != "" {
		modeIndicator := "[" + string(m.KeyMode) + "]"
		modeStyle := lipgloss.NewStyle()
		if !m.NoColor {
			th := CurrentTheme()
			if th.StatusColor != nil {
				modeStyle = modeStyle.Foreground(th.StatusColor)
			}
		}

		// Calculate spacing to right-align the indicator
		helpLineLen := ansiVisibleWidth(helpLine)
		modeLen := len(modeIndicator)
		if m.Width > helpLineLen+modeLen+2 {
			spacing := m.Width - helpLineLen - modeLen - 2
			helpLine = helpLine + strings.Repeat(" ", spacing) + modeStyle.Render(modeIndicator)
		}
	}

	return helpLine
}

// keyLabelForMode returns the display label for an action's key in the given mode.
func keyLabelForMode(keys MenuKeyBindings, mode KeyMode) string {
	switch mode {
	case KeyModeVim:
		return keys.Vim
	case KeyModeEmacs:
		return formatEmacsKey(keys.Emacs)
	default:
		return strings.ToUpper(keys.Function)
	}
}

// formatEmacsKey converts internal key format to display format (ctrl+t -> C-t)
func formatEmacsKey(key string) string {
	if key == "" {
		return ""
	}
	// Uppercase F-keys (f1 -> F1)
	if len(key) >= 2 && (key[0] == 'f' || key[0] == 'F') && key[1] >= '0' && key[1] <= '9' {
		return strings.ToUpper(key)
	}
	key = strings.ReplaceAll(key, "ctrl+", "C-")
	key = strings.ReplaceAll(key, "alt+", "M-")
	return key
}

// SetWidth sets the width of the footer
func (m *FooterModel) SetWidth(width int) {
	m.Width = width
}
