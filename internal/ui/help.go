package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// HelpModel represents the help overlay component
type HelpModel struct {
	Visible          bool
	NoColor          bool
	Width            int
	AboutTitle       string
	AboutLines       []string
	AboutAlign       string
	HelpDescriptions map[string]string // Custom help row descriptions
	KeyMode          KeyMode           // Current keybinding mode
}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{
		Width:      92, // Default width
		KeyMode:    DefaultKeyMode,
		AboutTitle: "",
		AboutLines: nil,
		AboutAlign: "right",
	}
}

// Update handles messages for the help component
func (m HelpModel) Update(_ tea.Msg) (HelpModel, tea.Cmd) {
	// Help overlay is passive - toggling is handled by the parent model
	return m, nil
}

// defaultHelpDescriptions returns the baseline row descriptions; callers can
// override individual entries through HelpModel.HelpDescriptions.
func defaultHelpDescriptions() map[string]string {
	return map[string]string{
		"move_up_down":   "move the selection up/down",
		"go_top_bottom":  "jump to top/bottom",
		"show_details":   "show entry details",
		"clear_filter":   "clear the filter",
		"type_to_filter": "narrow the catalog by title",
		"quit":           "quit",
	}
}

func mergeHelpDescriptions(custom map[string]string) map[string]string {
	descs := defaultHelpDescriptions()
	if custom == nil {
		return descs
	}
	merged := make(map[string]string, len(descs))
	for k, v := range descs {
		merged[k] = v
	}
	for k, v := range custom {
		merged[k] = v
	}
	return merged
}

// navigationHelpRows returns the navigation keybinding rows based on the key mode.
func navigationHelpRows(keyMode KeyMode, descs map[string]string) [][]string {
	var rows [][]string
	switch keyMode {
	case KeyModeVim:
		rows = [][]string{
			{"j/k", descs["move_up_down"]},
			{"gg/G", descs["go_top_bottom"]},
			{"Enter", descs["show_details"]},
			{"/", "edit the filter"},
			{"Esc", "leave the filter / clear it"},
		}
	case KeyModeEmacs:
		rows = [][]string{
			{"C-n/C-p", descs["move_up_down"]},
			{"M-</M->", descs["go_top_bottom"]},
			{"Enter", descs["show_details"]},
			{"C-g", descs["clear_filter"]},
		}
	default:
		rows = [][]string{
			{"↑/↓", descs["move_up_down"]},
			{"Home/End", descs["go_top_bottom"]},
			{"Enter", descs["show_details"]},
			{"Esc", descs["clear_filter"]},
		}
	}
	return rows
}

// filterHelpRows returns the filtering rows based on the key mode.
func filterHelpRows(keyMode KeyMode, descs map[string]string) [][]string {
	switch keyMode {
	case KeyModeVim:
		return [][]string{
			{"/ then typing", descs["type_to_filter"]},
			{"Esc", "back to normal mode"},
		}
	default:
		// Function and emacs modes keep the filter focused at all times.
		return [][]string{
			{"typing", descs["type_to_filter"]},
			{"Backspace", "delete the last character"},
		}
	}
}

// actionHelpRows returns the menu action rows with mode-specific key labels.
func actionHelpRows(menu MenuConfig, keyMode KeyMode) [][]string {
	rows := [][]string{}
	for _, kv := range OrderedMenuItems(menu) {
		key := keyLabelForMode(kv.Item.Keys, keyMode)
		if key == "" {
			continue
		}
		desc := kv.Item.HelpText
		if desc == "" {
			desc = kv.Item.Label
		}
		rows = append(rows, []string{key, desc})
	}
	return rows
}

// View renders the help overlay if visible
func (m HelpModel) View() string {
	if !m.Visible {
		return ""
	}

	menu := CurrentMenuConfig()
	descs := mergeHelpDescriptions(m.HelpDescriptions)
	actionRows := actionHelpRows(menu, m.KeyMode)
	navRows := navigationHelpRows(m.KeyMode, descs)
	filterRows := filterHelpRows(m.KeyMode, descs)

	// Mode switch hint
	modeHint := keyModeSwitchHint(m.KeyMode)

	leftStyle := lipgloss.NewStyle().PaddingLeft(1)
	rightStyle := lipgloss.NewStyle()
	boxStyle := lipgloss.NewStyle()
	aboutStyle := rightStyle
	if !m.NoColor {
		th := CurrentTheme()
		leftStyle = leftStyle.Foreground(th.HelpKey).Bold(true)
		rightStyle = rightStyle.Foreground(th.HelpValue)
		aboutStyle = aboutStyle.Foreground(th.HelpValue)
		boxStyle = boxStyle.Border(borderForTheme(th)).PaddingLeft(1).PaddingRight(1).AlignVertical(lipgloss.Top)
	} else {
		// In no-color mode still highlight key labels with true black on white
		leftStyle = leftStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
		boxStyle = boxStyle.Border(borderForTheme(CurrentTheme())).PaddingLeft(1).PaddingRight(1).AlignVertical(lipgloss.Top)
	}

	lines := []string{}

	// Optional About section at the top
	if len(m.AboutLines) > 0 {
		alignment := strings.ToLower(m.AboutAlign)
		switch alignment {
		case "center", "middle":
			aboutStyle = aboutStyle.Align(lipgloss.Center)
		case "left":
			aboutStyle = aboutStyle.Align(lipgloss.Left)
		default:
			aboutStyle = aboutStyle.Align(lipgloss.Right)
		}
		if m.Width > 4 {
			aboutStyle = aboutStyle.Width(m.Width - 4)
		}
		for _, l := range m.AboutLines {
			lines = append(lines, aboutStyle.Render(l))
		}
		lines = append(lines, "")
	}

	appendRows := func(rows [][]string) {
		for _, row := range rows {
			key := leftStyle.Render(fmt.Sprintf("%-16s", row[0]))
			val := rightStyle.Render(row[1])
			lines = append(lines, key+" "+val)
		}
	}

	// Actions section
	if len(actionRows) > 0 {
		appendRows(actionRows)
		lines = append(lines, "")
	}

	// Navigation section
	appendRows(navRows)

	// Filtering section
	lines = append(lines, "")
	appendRows(filterRows)
	appendRows([][]string{{"Ctrl+C", descs["quit"]}})

	// Mode switch hint at the bottom
	lines = append(lines, "")
	lines = append(lines, rightStyle.Render(modeHint))

	content := strings.Join(lines, "\n")
	box := boxStyle.Render(content)
	// Constrain width a bit so we do not overflow narrow terminals
	if m.Width > 0 && len(box) > m.Width {
		box = boxStyle.Width(m.Width - 2).Render(content)
	}

	return box + "\n"
}

// GenerateHelpText generates the formatted help menu text as a plain string.
// This is used to populate the config struct for Go templating.
func GenerateHelpText(menu MenuConfig, keyMode KeyMode) string {
	th := CurrentTheme()
	keyColor := th.HelpKey
	valColor := th.HelpValue
	headingColor := th.HeaderFG
	if keyColor == nil {
		keyColor = lipgloss.Color("12")
	}
	if valColor == nil {
		valColor = lipgloss.Color("250")
	}
	if headingColor == nil {
		headingColor = lipgloss.Color("14")
	}
	keyStyle := lipgloss.NewStyle().Foreground(keyColor)
	valStyle := lipgloss.NewStyle().Foreground(valColor)
	headingStyle := lipgloss.NewStyle().Foreground(headingColor).Bold(true)

	descs := defaultHelpDescriptions()
	actionRows := actionHelpRows(menu, keyMode)
	navRows := navigationHelpRows(keyMode, descs)
	filterRows := filterHelpRows(keyMode, descs)

	lines := []string{}
	appendRows := func(rows [][]string) {
		for _, row := range rows {
			key := fmt.Sprintf("%-16s", row[0])
			lines = append(lines, fmt.Sprintf("  %s %s", keyStyle.Render(key), valStyle.Render(row[1])))
		}
	}

	if len(actionRows) > 0 {
		lines = append(lines, headingStyle.Render("Keys"))
		appendRows(actionRows)
		lines = append(lines, "")
	}

	lines = append(lines, headingStyle.Render("Navigation"))
	appendRows(navRows)

	lines = append(lines, "")
	lines = append(lines, headingStyle.Render("Filtering"))
	appendRows(filterRows)
	appendRows([][]string{{"Ctrl+C", descs["quit"]}})

	// Mode switch hint at the bottom
	lines = append(lines, "")
	hint := keyModeSwitchHint(keyMode)
	lines = append(lines, valStyle.Render(hint))

	return strings.Join(lines, "\n")
}

// keyModeSwitchHint returns a footer hint showing the current mode and how to switch.
func keyModeSwitchHint(mode KeyMode) string {
	var current string
	switch mode {
	case KeyModeVim:
		current = "vim"
	case KeyModeEmacs:
		current = "emacs"
	case KeyModeFunction:
		current = "function"
	default:
		current = string(mode)
	}
	return fmt.Sprintf("Mode: %s  (switch with --keymap vim|emacs|function)", current)
}

// SetWidth sets the width of the help overlay
func (m *HelpModel) SetWidth(width int) {
	m.Width = width
}

// SetVisible sets the visibility of the help overlay
func (m *HelpModel) SetVisible(visible bool) {
	m.Visible = visible
}
