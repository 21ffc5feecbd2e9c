package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

// CardList holds the state for the card-list rendering of the visible items.
type CardList struct {
	Cards     []CardItem // Pre-computed renderable cards, one per visible item
	Selected  int        // Currently selected index (into Cards)
	ScrollTop int        // First visible card index
	Width     int        // Available width
	Height    int        // Available height (content rows)
}

// CardItem is a pre-computed renderable card derived from a catalog entry.
type CardItem struct {
	Index     int      // Original catalog index
	Title     string   // Title text (from the title field)
	Subtitle  string   // Subtitle text (from the subtitle field)
	Badges    []string // Badge labels (from the badge fields, arrays expanded)
	Secondary []string // Pre-formatted "field: value" metadata strings
}

// buildCards converts the currently visible filter items into renderable cards
// using the field spec. Entries without a subtitle/badge field render without
// those parts; card order follows the visible order.
func buildCards(visible []filter.Item, spec catalog.FieldSpec) []CardItem {
	cards := make([]CardItem, 0, len(visible))
	for _, it := range visible {
		card := CardItem{Index: it.Index, Title: it.Title}
		entry := it.Source

		if spec.Subtitle != "" {
			if v, ok := catalog.Field(entry, spec.Subtitle); ok && v != nil {
				card.Subtitle = catalog.Stringify(v)
			}
		}
		for _, bf := range spec.Badges {
			v, ok := catalog.Field(entry, bf)
			if !ok || v == nil {
				continue
			}
			switch val := v.(type) {
			case []any:
				for _, elem := range val {
					card.Badges = append(card.Badges, catalog.Stringify(elem))
				}
			case string:
				card.Badges = append(card.Badges, val)
			default:
				card.Badges = append(card.Badges, catalog.Stringify(v))
			}
		}
		for _, sf := range spec.Secondary {
			if v, ok := catalog.Field(entry, sf); ok && v != nil {
				card.Secondary = append(card.Secondary, sf+": "+catalog.Stringify(v))
			}
		}

		cards = append(cards, card)
	}
	return cards
}

// cardLineCount returns the number of content lines a single card will render.
func cardLineCount(card CardItem, subtitleLines, maxSubWidth int, hasSecondary bool) int {
	count := 1 // title line
	if card.Subtitle != "" {
		wrapped := wrapAtWidth(card.Subtitle, maxSubWidth)
		subLines := strings.Split(wrapped, "\n")
		if len(subLines) > subtitleLines {
			subLines = subLines[:subtitleLines]
		}
		count += len(subLines)
	}
	if hasSecondary && len(card.Secondary) > 0 {
		count++
	}
	return count
}

// countVisibleCards returns how many cards fit within availableHeight starting
// from startIdx, using actual per-card line counts rather than a fixed max.
func countVisibleCards(cards []CardItem, startIdx, availableHeight, subtitleLines, maxSubWidth int, hasSecondary bool) int {
	usedLines := 0
	count := 0
	for i := startIdx; i < len(cards); i++ {
		h := cardLineCount(cards[i], subtitleLines, maxSubWidth, hasSecondary)
		if count > 0 {
			h++ // blank separator between cards
		}
		if usedLines+h > availableHeight {
			break
		}
		usedLines += h
		count++
	}
	if count < 1 {
		count = 1
	}
	return count
}

// renderCardList renders the visible cards as a string that fits into the
// catalog panel. totalItems is the full catalog size, used to distinguish an
// empty catalog from a query that matches nothing.
func renderCardList(cl *CardList, subtitleLines int, hasSecondary bool, noColor bool, totalItems int) string {
	if cl == nil || len(cl.Cards) == 0 {
		if totalItems > 0 {
			return "  (no matches)"
		}
		return "  (empty)"
	}

	th := CurrentTheme()
	contentWidth := cl.Width - 4 // borders + padding
	if contentWidth < 10 {
		contentWidth = 10
	}

	if subtitleLines < 1 {
		subtitleLines = 1
	}

	maxSubWidth := contentWidth - 2 // account for marker indent
	if maxSubWidth < 5 {
		maxSubWidth = 5
	}

	availableHeight := cl.Height
	if availableHeight < 3 {
		availableHeight = 3
	}

	// Adjust scrollTop to keep the selection visible using actual card heights.
	if cl.Selected < cl.ScrollTop {
		cl.ScrollTop = cl.Selected
	}
	if cl.ScrollTop < 0 {
		cl.ScrollTop = 0
	}
	visibleCount := countVisibleCards(cl.Cards, cl.ScrollTop, availableHeight, subtitleLines, maxSubWidth, hasSecondary)
	if cl.Selected >= cl.ScrollTop+visibleCount {
		// Scroll down until the selected card is visible.
		for cl.ScrollTop < cl.Selected {
			cl.ScrollTop++
			visibleCount = countVisibleCards(cl.Cards, cl.ScrollTop, availableHeight, subtitleLines, maxSubWidth, hasSecondary)
			if cl.Selected < cl.ScrollTop+visibleCount {
				break
			}
		}
	}

	// Styles
	titleStyle := lipgloss.NewStyle().Bold(true)
	subtitleStyle := lipgloss.NewStyle()
	selectedMarker := lipgloss.NewStyle()
	badgeStyle := lipgloss.NewStyle()
	if !noColor {
		titleStyle = titleStyle.Foreground(th.TitleColor)
		subtitleStyle = subtitleStyle.Foreground(th.SubtitleColor)
		selectedMarker = selectedMarker.Foreground(th.SelectedBG)
		badgeStyle = badgeStyle.Foreground(th.BadgeFG).Background(th.BadgeBG)
	}

	var lines []string

	endIdx := cl.ScrollTop + visibleCount
	if endIdx > len(cl.Cards) {
		endIdx = len(cl.Cards)
	}

	for i := cl.ScrollTop; i < endIdx; i++ {
		card := cl.Cards[i]
		isSelected := i == cl.Selected

		// Selection indicator
		marker := "  "
		if isSelected {
			if noColor {
				marker = "│ "
			} else {
				marker = selectedMarker.Render("│") + " "
			}
		}

		// Title line
		title := card.Title
		if title == "" {
			title = fmt.Sprintf("[%d]", card.Index)
		}
		titleRendered := titleStyle.Render(title)

		// Badges inline after the title
		badgeStr := ""
		if len(card.Badges) > 0 {
			badges := make([]string, 0, len(card.Badges))
			for _, b := range card.Badges {
				if noColor {
					badges = append(badges, " "+b+" ")
				} else {
					badges = append(badges, badgeStyle.Render(" "+b+" "))
				}
			}
			badgeStr = " " + strings.Join(badges, " ")
		}

		titleLine := marker + titleRendered + badgeStr
		// Clamp to width
		if runewidth.StringWidth(stripANSI(titleLine)) > contentWidth+2 {
			titleLine = clampANSITextWidth(titleLine, contentWidth+2)
		}
		lines = append(lines, titleLine)

		// Subtitle line(s)
		if card.Subtitle != "" {
			wrapped := wrapAtWidth(card.Subtitle, maxSubWidth)
			subLines := strings.Split(wrapped, "\n")
			if len(subLines) > subtitleLines {
				subLines = subLines[:subtitleLines]
				// Add ellipsis to the last line
				last := subLines[len(subLines)-1]
				if runewidth.StringWidth(last) > maxSubWidth-3 {
					last = runewidth.Truncate(last, maxSubWidth-3, "") + "..."
				} else {
					last += "..."
				}
				subLines[len(subLines)-1] = last
			}
			for _, sl := range subLines {
				rendered := subtitleStyle.Render(sl)
				lines = append(lines, "  "+rendered)
			}
		}

		// Secondary metadata line
		if len(card.Secondary) > 0 {
			secondaryLine := "    " + subtitleStyle.Render(strings.Join(card.Secondary, " · "))
			if runewidth.StringWidth(stripANSI(secondaryLine)) > contentWidth+2 {
				secondaryLine = clampANSITextWidth(secondaryLine, contentWidth+2)
			}
			lines = append(lines, secondaryLine)
		}

		// Blank line between cards
		if i < endIdx-1 {
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

// wrapAtWidth wraps text at the given width, breaking on word boundaries.
func wrapAtWidth(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		test := current + " " + word
		if runewidth.StringWidth(test) > width {
			lines = append(lines, current)
			current = word
		} else {
			current = test
		}
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}
