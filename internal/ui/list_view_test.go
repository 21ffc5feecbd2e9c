package ui

import (
	"strings"
	"testing"
)

func TestBuildCardsMapsFields(t *testing.T) {
	cards := buildCards(sampleItems(), sampleFieldSpec())
	if len(cards) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(cards))
	}

	first := cards[0]
	if first.Title != "Apple Pie" {
		t.Errorf("expected title 'Apple Pie', got %q", first.Title)
	}
	if first.Subtitle != "Classic double-crust pie with cinnamon" {
		t.Errorf("expected description as subtitle, got %q", first.Subtitle)
	}
	if len(first.Badges) != 2 || first.Badges[0] != "dessert" || first.Badges[1] != "fruit" {
		t.Errorf("expected tags array expanded into badges, got %v", first.Badges)
	}
	if len(first.Secondary) != 1 || first.Secondary[0] != "year: 2019" {
		t.Errorf("expected secondary metadata, got %v", first.Secondary)
	}
}

func TestBuildCardsSkipsMissingFields(t *testing.T) {
	items := sampleItems()[1:2] // Banana Bread: single tag, no url
	cards := buildCards(items, sampleFieldSpec())
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if len(cards[0].Badges) != 1 || cards[0].Badges[0] != "bread" {
		t.Errorf("expected single badge, got %v", cards[0].Badges)
	}
}

func TestBuildCardsStringBadgeField(t *testing.T) {
	items := sampleItems()
	items[0].Source = map[string]any{"title": "Apple Pie", "tags": "solo"}
	cards := buildCards(items[:1], sampleFieldSpec())
	if len(cards[0].Badges) != 1 || cards[0].Badges[0] != "solo" {
		t.Errorf("expected scalar badge value kept, got %v", cards[0].Badges)
	}
}

func TestBuildCardsPreservesOrder(t *testing.T) {
	cards := buildCards(sampleItems(), sampleFieldSpec())
	want := []string{"Apple Pie", "Banana Bread", "apple tart", "Cherry Cobbler"}
	for i, card := range cards {
		if card.Title != want[i] {
			t.Fatalf("card %d: expected %q, got %q", i, want[i], card.Title)
		}
	}
}

func TestRenderCardListEmptyStates(t *testing.T) {
	cl := &CardList{Width: 80, Height: 10}
	if got := renderCardList(cl, 1, false, true, 4); got != "  (no matches)" {
		t.Errorf("expected no-matches placeholder, got %q", got)
	}
	if got := renderCardList(cl, 1, false, true, 0); got != "  (empty)" {
		t.Errorf("expected empty placeholder, got %q", got)
	}
	if got := renderCardList(nil, 1, false, true, 0); got != "  (empty)" {
		t.Errorf("expected empty placeholder for nil list, got %q", got)
	}
}

func TestRenderCardListMarksSelection(t *testing.T) {
	cards := buildCards(sampleItems(), sampleFieldSpec())
	cl := &CardList{Cards: cards, Selected: 1, Width: 80, Height: 20}
	out := renderCardList(cl, 1, true, true, 4)

	lines := strings.Split(out, "\n")
	var selectedLine string
	for _, line := range lines {
		if strings.Contains(line, "Banana Bread") {
			selectedLine = line
			break
		}
	}
	if selectedLine == "" {
		t.Fatalf("expected 'Banana Bread' in output:\n%s", out)
	}
	if !strings.HasPrefix(selectedLine, "│ ") {
		t.Errorf("expected selection marker on the selected card, got %q", selectedLine)
	}
	for _, line := range lines {
		if strings.Contains(line, "Apple Pie") && strings.HasPrefix(line, "│") {
			t.Errorf("unselected card carries the marker: %q", line)
		}
	}
}

func TestRenderCardListShowsBadgesAndSecondary(t *testing.T) {
	cards := buildCards(sampleItems(), sampleFieldSpec())
	cl := &CardList{Cards: cards, Width: 80, Height: 30}
	out := renderCardList(cl, 1, true, true, 4)

	if !strings.Contains(out, " dessert ") {
		t.Errorf("expected badge pill in output:\n%s", out)
	}
	if !strings.Contains(out, "year: 2019") {
		t.Errorf("expected secondary metadata in output:\n%s", out)
	}
}

func TestRenderCardListScrollsSelectionIntoView(t *testing.T) {
	cards := buildCards(sampleItems(), sampleFieldSpec())
	// Height fits roughly one card (title + subtitle + secondary + separator).
	cl := &CardList{Cards: cards, Selected: 3, Width: 80, Height: 4}
	out := renderCardList(cl, 1, true, true, 4)

	if !strings.Contains(out, "Cherry Cobbler") {
		t.Errorf("expected the selected card to scroll into view:\n%s", out)
	}
	if cl.ScrollTop == 0 {
		t.Error("expected ScrollTop to advance")
	}
}

func TestCardLineCount(t *testing.T) {
	card := CardItem{Title: "Apple Pie"}
	if got := cardLineCount(card, 1, 60, false); got != 1 {
		t.Errorf("title-only card: expected 1 line, got %d", got)
	}

	card.Subtitle = "a short subtitle"
	if got := cardLineCount(card, 1, 60, false); got != 2 {
		t.Errorf("card with subtitle: expected 2 lines, got %d", got)
	}

	card.Secondary = []string{"year: 2019"}
	if got := cardLineCount(card, 1, 60, true); got != 3 {
		t.Errorf("card with secondary: expected 3 lines, got %d", got)
	}
}

func TestWrapAtWidth(t *testing.T) {
	if got := wrapAtWidth("short", 20); got != "short" {
		t.Errorf("expected unwrapped text, got %q", got)
	}

	got := wrapAtWidth("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := wrapAtWidth("anything", 0); got != "anything" {
		t.Errorf("zero width must not wrap, got %q", got)
	}
}
