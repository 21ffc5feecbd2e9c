package ui

import (
	"os"
	"regexp"
	"strings"

	"charm.land/bubbles/v2/table"
	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// repeatToWidth repeats the fill string until reaching the requested display width.
func repeatToWidth(fill string, width int) string {
	if width <= 0 {
		return ""
	}
	if strings.TrimSpace(fill) == "" {
		fill = " "
	}
	var b strings.Builder
	for runewidth.StringWidth(b.String()) < width {
		b.WriteString(fill)
	}
	result := b.String()
	if w := runewidth.StringWidth(result); w > width {
		result = runewidth.Truncate(result, width, "")
	}
	return result
}

// wrapPlainText wraps plain text (no ANSI) to the given width, preserving newlines.
func wrapPlainText(s string, width int) string {
	if width <= 0 {
		return s
	}

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			out = append(out, "")
			continue
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		current := words[0]
		for _, w := range words[1:] {
			if len(current)+1+len(w) <= width {
				current += " " + w
				continue
			}
			out = append(out, current)
			current = w
		}
		out = append(out, current)
	}

	return strings.Join(out, "\n")
}

// padANSIToWidth pads s to the target width with spaces, accounting for ANSI escape sequences
// that don't contribute to visible width.
func padANSIToWidth(s string, targetWidth int) string {
	visible := ansiVisibleWidth(s)
	if visible >= targetWidth {
		return s
	}
	padding := targetWidth - visible
	return s + strings.Repeat(" ", padding)
}

// ansiVisibleWidth calculates the visible width of a string with ANSI escape sequences.
func ansiVisibleWidth(s string) int {
	plain := ansiRegexp.ReplaceAllString(s, "")
	return runewidth.StringWidth(plain)
}

// clampANSITextWidth trims each line to the provided max display width while
// preserving ANSI escape sequences.
func clampANSITextWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	var out strings.Builder
	width := 0

	// State machine for ANSI escape sequences.
	// Handles both CSI (ESC [ ... letter) and OSC (ESC ] ... ST/BEL).
	const (
		stNormal = iota
		stEsc    // just saw ESC, next char determines sequence type
		stCSI    // inside CSI sequence, waiting for terminating letter
		stOSC    // inside OSC sequence, waiting for ST (ESC \) or BEL
		stOSCEsc // inside OSC, just saw ESC (looking for \\ to end)
	)
	state := stNormal

	for _, r := range s {
		if r == '\n' {
			out.WriteRune(r)
			width = 0
			state = stNormal
			continue
		}

		switch state {
		case stNormal:
			if r == 0x1b { // ESC
				state = stEsc
				out.WriteRune(r)
				continue
			}
			w := runewidth.RuneWidth(r)
			if width+w > maxWidth {
				continue
			}
			out.WriteRune(r)
			width += w

		case stEsc:
			out.WriteRune(r)
			switch r {
			case '[':
				state = stCSI
			case ']':
				state = stOSC
			default:
				// Single-char escape (e.g. ESC c) is done.
				state = stNormal
			}

		case stCSI:
			out.WriteRune(r)
			// CSI sequences end with a letter.
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				state = stNormal
			}

		case stOSC:
			out.WriteRune(r)
			switch r {
			case 0x1b:
				state = stOSCEsc
			case 0x07: // BEL terminates OSC
				state = stNormal
			}

		case stOSCEsc:
			out.WriteRune(r)
			// ESC \ (ST) terminates OSC; anything else stays in OSC.
			if r == '\\' {
				state = stNormal
			} else {
				state = stOSC
			}
		}
	}

	return out.String()
}

// newStyle creates a lipgloss style.
func newStyle() lipgloss.Style {
	return lipgloss.NewStyle()
}

// intMax returns the maximum of two integers.
func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// clampANSITextHeight trims text to the provided max line count to keep content
// within its panel. ANSI escape sequences are preserved because lines are
// clipped, not rewritten.
func clampANSITextHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}

	trimmed := strings.TrimRight(s, "\n")
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// containsF1 checks if a key sequence contains the F1 key.
func containsF1(keys []string) bool {
	for _, k := range keys {
		if strings.EqualFold(strings.TrimSpace(k), "<f1>") || strings.EqualFold(strings.TrimSpace(k), "f1") {
			return true
		}
	}
	return false
}

// leftTruncate keeps the rightmost visible width of a plain (non-ANSI) string.
func leftTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if ansiVisibleWidth(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	total := 0
	out := []rune{}
	// Walk from the end to preserve the tail.
	for i := len(runes) - 1; i >= 0; i-- {
		w := runewidth.RuneWidth(runes[i])
		if total+w > maxWidth {
			break
		}
		out = append(out, runes[i])
		total += w
	}
	// Reverse to restore order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// addBottomLabel injects a left-justified source name and right-aligned count label
// into the bottom border of a bordered panel.
func addBottomLabel(panel string, leftText string, label string, targetWidth int) string {
	if strings.TrimSpace(panel) == "" {
		return panel
	}
	th := CurrentTheme()
	border := borderForTheme(th)
	leftStyle := lipgloss.NewStyle().Foreground(th.StatusColor)
	rightStyle := lipgloss.NewStyle().Foreground(th.StatusSuccess)
	borderStyle := lipgloss.NewStyle().Foreground(th.SeparatorColor)

	lines := strings.Split(strings.TrimRight(panel, "\n"), "\n")
	if len(lines) == 0 {
		return panel
	}
	bottom := lines[len(lines)-1]
	plainBottom := ansiRegexp.ReplaceAllString(bottom, "")
	leftCorner := border.BottomLeft
	rightCorner := border.BottomRight
	if leftCorner == "" || rightCorner == "" {
		return panel
	}
	if !strings.HasPrefix(plainBottom, leftCorner) || !strings.HasSuffix(plainBottom, rightCorner) {
		return panel
	}

	width := runewidth.StringWidth(plainBottom)
	if targetWidth > 0 {
		width = targetWidth
	}
	if width < 4 {
		return panel
	}

	inner := width - runewidth.StringWidth(leftCorner) - runewidth.StringWidth(rightCorner)
	left := strings.TrimSpace(leftText)
	if left != "" {
		left = " " + left + " "
	}
	right := strings.TrimSpace(label)
	if right != "" {
		right = " " + right + " "
	}

	leftW := runewidth.StringWidth(left)
	rightW := runewidth.StringWidth(right)
	if leftW+rightW > inner {
		avail := inner - rightW
		if avail < 0 {
			avail = 0
		}
		if avail > 0 {
			left = leftTruncate(left, avail)
			leftW = runewidth.StringWidth(left)
		} else {
			left = ""
			leftW = 0
		}
	}
	fill := inner - leftW - rightW
	if fill < 0 {
		fill = 0
	}

	lines[len(lines)-1] = borderStyle.Render(leftCorner) + leftStyle.Render(left) + borderStyle.Render(repeatToWidth(border.Bottom, fill)) + rightStyle.Render(right) + borderStyle.Render(rightCorner)
	return strings.Join(lines, "\n")
}

// panelWithTitle renders a bordered panel with a title inserted into the top border.
func panelWithTitle(title string, content string, width int, height int, border lipgloss.Border, noColor bool) string {
	if width < 4 {
		width = 4
	}
	if height < 1 {
		height = 1
	}

	th := CurrentTheme()
	borderStyle := lipgloss.NewStyle().Border(border)
	if !noColor {
		borderStyle = borderStyle.BorderForeground(th.SeparatorColor)
	}

	// Manually pad content to exact height without using lipgloss .Height()
	// which might apply unwanted transformations to colored text.
	contentLines := strings.Split(content, "\n")
	innerHeight := height - 2 // account for top/bottom borders
	innerWidth := width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	if innerHeight < 1 {
		innerHeight = 1
	}

	// Trim or pad height
	if len(contentLines) > innerHeight {
		contentLines = contentLines[:innerHeight]
	} else if len(contentLines) < innerHeight {
		for len(contentLines) < innerHeight {
			contentLines = append(contentLines, "")
		}
	}

	for i := range contentLines {
		contentLines[i] = clampANSITextWidth(contentLines[i], innerWidth)
		contentLines[i] = padANSIToWidth(contentLines[i], innerWidth)
	}

	// Rejoin and render with borders (no .Width() or .Height() to avoid re-wrapping)
	paddedContent := strings.Join(contentLines, "\n")
	bordered := borderStyle.Render(paddedContent)

	// Insert title into the top border
	lines := strings.Split(bordered, "\n")
	if len(lines) == 0 {
		return bordered
	}

	topBorder := lines[0]
	plainTop := ansiRegexp.ReplaceAllString(topBorder, "")
	topLeft := border.TopLeft
	topRight := border.TopRight
	if topLeft == "" || topRight == "" {
		return bordered
	}
	if len(plainTop) < 4 || !strings.HasPrefix(plainTop, topLeft) {
		return bordered // Can't parse, return as-is
	}

	titleWithSpace := " " + title + " "

	plainTopWidth := runewidth.StringWidth(plainTop)
	leftWidth := runewidth.StringWidth(topLeft)
	rightWidth := runewidth.StringWidth(topRight)
	titleInnerWidth := plainTopWidth - leftWidth - rightWidth
	if titleInnerWidth < 1 {
		return bordered
	}

	// Trim title to available width (display-width aware).
	// Use lipgloss.Width for the final measurement so multi-rune
	// sequences like emoji+VS16 are counted correctly.
	titleRunes := []rune(titleWithSpace)
	trimmed := make([]rune, 0, len(titleRunes))
	for _, r := range titleRunes {
		trimmed = append(trimmed, r)
		if lipgloss.Width(string(trimmed)) > titleInnerWidth {
			trimmed = trimmed[:len(trimmed)-1]
			break
		}
	}
	titleWidth := lipgloss.Width(string(trimmed))

	// Center the title by padding with box-drawing characters, then clamp to titleInnerWidth.
	leftPad := 0
	if titleInnerWidth > titleWidth {
		leftPad = (titleInnerWidth - titleWidth) / 2
	}
	rightPad := titleInnerWidth - leftPad - titleWidth

	borderColor := th.SeparatorColor
	borderPaint := lipgloss.NewStyle().Foreground(borderColor).Render
	titlePaint := lipgloss.NewStyle().Foreground(th.HeaderFG).Bold(true).Render
	newTopBorder := borderPaint(topLeft) + borderPaint(repeatToWidth(border.Top, leftPad)) + titlePaint(string(trimmed)) + borderPaint(repeatToWidth(border.Top, rightPad)) + borderPaint(topRight)

	// Reconstruct the panel with new top border
	lines[0] = newTopBorder
	return strings.Join(lines, "\n")
}

// RenderCatalogTable renders catalog items as a table consistent with non-interactive
// CLI output. titleColWidth/detailsColWidth mirror CLI flags (0 = auto). widthHint may
// be 0 to auto-detect the terminal width.
func RenderCatalogTable(items []filter.Item, spec catalog.FieldSpec, noColor bool, titleColWidth, detailsColWidth, widthHint int) string {
	// Create a minimal model for table rendering
	m := InitialModel(items)
	m.NoColor = noColor
	m.FieldSpec = spec
	m.ViewMode = ViewModeTable

	// Set window dimensions first (needed for column width calculation)
	termWidth := widthHint
	if termWidth <= 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			termWidth = w
		} else {
			termWidth = 120 // generous fallback to match CLI defaults
		}
	}
	m.WinWidth = termWidth
	m.Layout.SetDimensions(termWidth, 24) // Height doesn't matter for CLI

	// Configure requested widths and calculate actual widths using the layout manager
	if titleColWidth <= 0 {
		// Shrink the title column when titles are short to free space for details.
		maxTitle := 0
		for _, it := range m.Controller.Visible() {
			if w := lipgloss.Width(it.Title); w > maxTitle {
				maxTitle = w
			}
		}
		if maxTitle > 0 {
			titleColWidth = maxTitle + 2
			if titleColWidth < 8 {
				titleColWidth = 8
			}
			if titleColWidth > DefaultTitleColWidth {
				titleColWidth = DefaultTitleColWidth
			}
		}
	}
	m.ConfiguredTitleColWidth = titleColWidth
	m.ConfiguredDetailsWidth = detailsColWidth
	titleW, detailsW := m.Layout.CalculateColumnWidths(m.ConfiguredTitleColWidth, m.ConfiguredDetailsWidth, m.AutoTitleColumnWidth)
	m.TitleColWidth = titleW
	m.DetailsColWidth = detailsW

	// Use the shared table state synchronization logic so CLI mode uses the same
	// row generation and styling as interactive/snapshot modes.
	m.SyncTableState()

	// For CLI output, show all rows (no height limit)
	rowCount := len(m.Tbl.Rows())
	if rowCount > 0 {
		m.Tbl.SetHeight(rowCount + TableHeaderLines)
	} else {
		// If no rows, set a minimal height to show the header
		m.Tbl.SetHeight(1 + TableHeaderLines)
	}

	// Disable row highlighting: blur the table and clear the selection.
	m.Tbl.Blur()
	m.Tbl.SetCursor(-1)

	m.ApplyColorScheme()

	// Make Selected style identical to Cell style so no row is highlighted.
	// Styles must be recreated since the table component doesn't expose a getter.
	s := table.DefaultStyles()
	th := CurrentTheme()
	s.Header = s.Header.
		BorderStyle(borderForTheme(th)).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)

	cellStyle := lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = cellStyle // Selected matches Cell (no highlighting)
	s.Cell = cellStyle

	if noColor {
		s.Header = s.Header.
			UnsetForeground().
			UnsetBackground()
		s.Selected = s.Selected.
			UnsetForeground().
			UnsetBackground()
		s.Cell = s.Cell.
			UnsetForeground().
			UnsetBackground()
	} else {
		s.Header = s.Header.
			Foreground(th.HeaderFG).
			Background(th.HeaderBG)
	}
	m.Tbl.SetStyles(s)

	// Render just the table
	output := m.Tbl.View()
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	return output
}
