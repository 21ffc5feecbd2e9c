package ui

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/winnow/pkg/catalog"
)

// DetailView holds state for the sectioned rendering of a single entry.
type DetailView struct {
	Entry     any               // The entry being displayed
	Sections  []renderedSection // Pre-computed rendered sections
	TitleText string            // Header title (from the title field)
	ScrollTop int               // First visible line
	Width     int               // Available width
	Height    int               // Available height
}

// renderedSection is a pre-computed section of the detail view.
type renderedSection struct {
	Title string   // Section heading (may be empty)
	Lines []string // Rendered lines
}

// buildDetailView creates a DetailView from a catalog entry using the field
// spec. The mapped fields render first (secondary inline, subtitle as a
// paragraph, badges as pills); everything else lands in a trailing key/value
// section. Scalar entries render as a single paragraph.
func buildDetailView(entry any, spec catalog.FieldSpec, width, height int) *DetailView {
	dv := &DetailView{
		Entry:  entry,
		Width:  width,
		Height: height,
	}

	contentWidth := width - 4
	if contentWidth < 10 {
		contentWidth = 10
	}

	obj, ok := entry.(map[string]any)
	if !ok {
		dv.TitleText = catalog.Title(entry, spec.Title)
		text := catalog.Stringify(entry)
		if text != "" {
			dv.Sections = append(dv.Sections, renderedSection{
				Lines: strings.Split(wrapAtWidth(text, contentWidth), "\n"),
			})
		}
		return dv
	}

	dv.TitleText = catalog.Title(entry, spec.Title)

	// Fields already shown elsewhere stay out of the trailing section.
	covered := make(map[string]bool)
	if spec.Title != "" {
		covered[spec.Title] = true
	}

	// Secondary metadata as a single inline line.
	if len(spec.Secondary) > 0 {
		if lines := renderInlineSection(obj, spec.Secondary, contentWidth); len(lines) > 0 {
			dv.Sections = append(dv.Sections, renderedSection{Lines: lines})
		}
		for _, f := range spec.Secondary {
			covered[f] = true
		}
	}

	// Subtitle as a full wrapped paragraph.
	if spec.Subtitle != "" {
		if lines := renderParagraphSection(obj, []string{spec.Subtitle}, contentWidth); len(lines) > 0 {
			dv.Sections = append(dv.Sections, renderedSection{Lines: lines})
		}
		covered[spec.Subtitle] = true
	}

	// Badges as pill rows.
	if len(spec.Badges) > 0 {
		if lines := renderTagsSection(obj, spec.Badges, contentWidth); len(lines) > 0 {
			dv.Sections = append(dv.Sections, renderedSection{Lines: lines})
		}
		for _, f := range spec.Badges {
			covered[f] = true
		}
	}

	// Everything else as key/value rows.
	var rest []string
	for _, k := range collectObjectKeys(obj) {
		if !covered[k] {
			rest = append(rest, k)
		}
	}
	if len(rest) > 0 {
		if lines := renderTableSection(obj, rest, contentWidth); len(lines) > 0 {
			dv.Sections = append(dv.Sections, renderedSection{Title: "Fields", Lines: lines})
		}
	}

	return dv
}

// renderInlineSection renders fields as "value1 · value2 · value3".
func renderInlineSection(obj map[string]any, fields []string, width int) []string {
	var parts []string
	for _, f := range fields {
		v := obj[f]
		if v == nil {
			continue
		}
		s := catalog.Stringify(v)
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil
	}
	line := strings.Join(parts, " · ")
	if runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width-3, "...")
	}
	return []string{line}
}

// renderParagraphSection renders fields as wrapped text paragraphs.
func renderParagraphSection(obj map[string]any, fields []string, width int) []string {
	var lines []string
	for _, f := range fields {
		v := obj[f]
		if v == nil {
			continue
		}
		text := catalog.Stringify(v)
		if text == "" {
			continue
		}
		wrapped := wrapAtWidth(text, width)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	return lines
}

// renderTagsSection renders array fields as colored pill badges.
func renderTagsSection(obj map[string]any, fields []string, width int) []string {
	th := CurrentTheme()
	badgeStyle := lipgloss.NewStyle().
		Foreground(th.BadgeFG).
		Background(th.BadgeBG).
		PaddingLeft(1).
		PaddingRight(1)

	var badges []string
	for _, f := range fields {
		val := obj[f]
		switch v := val.(type) {
		case []any:
			for _, elem := range v {
				badges = append(badges, badgeStyle.Render(catalog.Stringify(elem)))
			}
		case string:
			badges = append(badges, badgeStyle.Render(v))
		default:
			if val != nil {
				badges = append(badges, badgeStyle.Render(catalog.Stringify(val)))
			}
		}
	}
	if len(badges) == 0 {
		return nil
	}

	// Wrap badges into lines that fit within width
	var lines []string
	currentLine := ""
	currentWidth := 0
	for _, badge := range badges {
		bw := runewidth.StringWidth(stripANSI(badge))
		spaceNeeded := bw
		if currentWidth > 0 {
			spaceNeeded++ // space separator
		}
		if currentWidth+spaceNeeded > width && currentWidth > 0 {
			lines = append(lines, currentLine)
			currentLine = badge
			currentWidth = bw
		} else {
			if currentWidth > 0 {
				currentLine += " "
				currentWidth++
			}
			currentLine += badge
			currentWidth += bw
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

// renderTableSection renders fields as KEY/VALUE rows.
func renderTableSection(obj map[string]any, fields []string, width int) []string {
	th := CurrentTheme()
	keyStyle := lipgloss.NewStyle().Foreground(th.TitleColor)
	valStyle := lipgloss.NewStyle().Foreground(th.SubtitleColor)

	// Find the longest key for alignment
	maxKeyLen := 0
	for _, f := range fields {
		if len(f) > maxKeyLen {
			maxKeyLen = len(f)
		}
	}
	if maxKeyLen > width/3 {
		maxKeyLen = width / 3
	}

	var lines []string
	for _, f := range fields {
		v := obj[f]
		if v == nil {
			continue
		}
		key := f
		if len(key) > maxKeyLen {
			key = runewidth.Truncate(key, maxKeyLen, "…")
		}
		// Pad key to alignment width
		key += strings.Repeat(" ", maxKeyLen-runewidth.StringWidth(key))

		val := stringifyValue(v, width-maxKeyLen-3)
		line := keyStyle.Render(key) + "  " + valStyle.Render(val)
		lines = append(lines, line)
	}
	return lines
}

// stringifyValue converts a value to a display string with width limiting.
func stringifyValue(v any, maxWidth int) string {
	if maxWidth < 3 {
		maxWidth = 3
	}
	switch val := v.(type) {
	case []any:
		parts := make([]string, 0, len(val))
		for _, elem := range val {
			parts = append(parts, catalog.Stringify(elem))
		}
		s := "[" + strings.Join(parts, ", ") + "]"
		if runewidth.StringWidth(s) > maxWidth {
			s = runewidth.Truncate(s, maxWidth-3, "") + "..."
		}
		return s
	case map[string]any:
		return fmt.Sprintf("{%d keys}", len(val))
	default:
		s := catalog.Stringify(v)
		if runewidth.StringWidth(s) > maxWidth {
			s = runewidth.Truncate(s, maxWidth-3, "") + "..."
		}
		return s
	}
}

// collectObjectKeys returns the sorted keys of an object entry.
func collectObjectKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderDetailView renders the full detail view for the catalog panel.
// The title is rendered in the panel border by the caller, so it is skipped
// here to avoid duplication.
func renderDetailView(dv *DetailView, noColor bool) string {
	if dv == nil {
		return "  (no data)"
	}

	th := CurrentTheme()

	var allLines []string
	for _, sec := range dv.Sections {
		// Blank line before each section
		allLines = append(allLines, "")

		if sec.Title != "" {
			sectionStyle := lipgloss.NewStyle().Bold(true)
			if !noColor {
				sectionStyle = sectionStyle.Foreground(th.StatusColor)
			}
			allLines = append(allLines, sectionStyle.Render(sec.Title))
		}

		allLines = append(allLines, sec.Lines...)
	}

	// Scrolling
	totalLines := len(allLines)
	visibleHeight := dv.Height - 2 // borders
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	if dv.ScrollTop > totalLines-visibleHeight {
		dv.ScrollTop = totalLines - visibleHeight
	}
	if dv.ScrollTop < 0 {
		dv.ScrollTop = 0
	}

	endLine := dv.ScrollTop + visibleHeight
	if endLine > totalLines {
		endLine = totalLines
	}

	visible := allLines[dv.ScrollTop:endLine]

	return strings.Join(visible, "\n")
}
