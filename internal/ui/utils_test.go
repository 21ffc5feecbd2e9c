package ui

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/winnow/pkg/catalog"
)

func TestRepeatToWidth(t *testing.T) {
	if got := repeatToWidth("─", 5); runewidth.StringWidth(got) != 5 {
		t.Errorf("expected width 5, got %q (%d)", got, runewidth.StringWidth(got))
	}
	if got := repeatToWidth("ab", 5); got != "ababa" {
		t.Errorf("expected %q, got %q", "ababa", got)
	}
	if got := repeatToWidth("x", 0); got != "" {
		t.Errorf("expected empty string for zero width, got %q", got)
	}
	if got := repeatToWidth("", 3); got != "   " {
		t.Errorf("expected spaces for empty fill, got %q", got)
	}
}

func TestWrapPlainText(t *testing.T) {
	got := wrapPlainText("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := wrapPlainText("keep\n\nblank", 20); got != "keep\n\nblank" {
		t.Errorf("expected blank lines preserved, got %q", got)
	}
	if got := wrapPlainText("untouched", 0); got != "untouched" {
		t.Errorf("expected no-op for zero width, got %q", got)
	}
}

func TestPadANSIToWidth(t *testing.T) {
	styled := "\x1b[31mred\x1b[0m"
	padded := padANSIToWidth(styled, 6)
	if ansiVisibleWidth(padded) != 6 {
		t.Errorf("expected visible width 6, got %d (%q)", ansiVisibleWidth(padded), padded)
	}
	if !strings.HasSuffix(padded, "   ") {
		t.Errorf("expected trailing spaces, got %q", padded)
	}
	if got := padANSIToWidth("toolong", 3); got != "toolong" {
		t.Errorf("expected no truncation, got %q", got)
	}
}

func TestAnsiVisibleWidth(t *testing.T) {
	if got := ansiVisibleWidth("\x1b[1;32mhi\x1b[0m"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := ansiVisibleWidth("plain"); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestClampANSITextWidth(t *testing.T) {
	if got := clampANSITextWidth("abcdef", 3); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}

	// Escape sequences survive clamping and do not count toward width.
	styled := "\x1b[31mabcdef\x1b[0m"
	got := clampANSITextWidth(styled, 3)
	if ansiVisibleWidth(got) != 3 {
		t.Errorf("expected visible width 3, got %d (%q)", ansiVisibleWidth(got), got)
	}
	if !strings.Contains(got, "\x1b[31m") {
		t.Errorf("expected color sequence preserved, got %q", got)
	}

	if got := clampANSITextWidth("ab\ncdef", 2); got != "ab\ncd" {
		t.Errorf("expected per-line clamp, got %q", got)
	}
	if got := clampANSITextWidth("anything", 0); got != "" {
		t.Errorf("expected empty output for zero width, got %q", got)
	}
}

func TestClampANSITextHeight(t *testing.T) {
	if got := clampANSITextHeight("a\nb\nc", 2); got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
	if got := clampANSITextHeight("a\nb", 5); got != "a\nb" {
		t.Errorf("expected unchanged text, got %q", got)
	}
	if got := clampANSITextHeight("a\nb", 0); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := clampANSITextHeight("a\n\n\n", 5); got != "a" {
		t.Errorf("expected trailing newlines trimmed, got %q", got)
	}
}

func TestContainsF1(t *testing.T) {
	if !containsF1([]string{"<F1>"}) || !containsF1([]string{" f1 "}) {
		t.Error("expected F1 tokens recognized")
	}
	if containsF1([]string{"<F2>", "apple"}) {
		t.Error("expected non-F1 tokens rejected")
	}
	if containsF1(nil) {
		t.Error("expected nil slice rejected")
	}
}

func TestLeftTruncate(t *testing.T) {
	if got := leftTruncate("abcdef", 3); got != "def" {
		t.Errorf("expected %q, got %q", "def", got)
	}
	if got := leftTruncate("abc", 5); got != "abc" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := leftTruncate("abc", 0); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestIntMax(t *testing.T) {
	if intMax(3, 7) != 7 || intMax(7, 3) != 7 || intMax(-1, -2) != -1 {
		t.Error("intMax returned the wrong value")
	}
}

func TestPanelWithTitleStructure(t *testing.T) {
	panel := panelWithTitle("Catalog", "line one\nline two", 30, 6, lipgloss.RoundedBorder(), true)
	lines := strings.Split(panel, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), panel)
	}
	top := stripANSI(lines[0])
	if !strings.Contains(top, " Catalog ") {
		t.Errorf("expected title in top border, got %q", top)
	}
	for i, line := range lines {
		if w := ansiVisibleWidth(line); w != 30 {
			t.Errorf("line %d: expected width 30, got %d (%q)", i, w, line)
		}
	}
	if !strings.Contains(stripANSI(lines[1]), "line one") {
		t.Errorf("expected content inside panel, got %q", lines[1])
	}
}

func TestPanelWithTitlePadsShortContent(t *testing.T) {
	panel := panelWithTitle("T", "only", 20, 8, lipgloss.RoundedBorder(), true)
	if got := len(strings.Split(panel, "\n")); got != 8 {
		t.Errorf("expected 8 lines, got %d", got)
	}
}

func TestAddBottomLabel(t *testing.T) {
	panel := panelWithTitle("T", "content", 40, 5, lipgloss.RoundedBorder(), true)
	labeled := addBottomLabel(panel, "sample.json", "2/4", 40)
	lines := strings.Split(labeled, "\n")
	bottom := stripANSI(lines[len(lines)-1])
	if !strings.Contains(bottom, " sample.json ") {
		t.Errorf("expected source name in bottom border, got %q", bottom)
	}
	if !strings.Contains(bottom, " 2/4 ") {
		t.Errorf("expected count label in bottom border, got %q", bottom)
	}
	if runewidth.StringWidth(bottom) != 40 {
		t.Errorf("expected bottom border width 40, got %d", runewidth.StringWidth(bottom))
	}
}

func TestAddBottomLabelLeavesUnborderedTextAlone(t *testing.T) {
	if got := addBottomLabel("plain text", "left", "right", 40); got != "plain text" {
		t.Errorf("expected input unchanged, got %q", got)
	}
	if got := addBottomLabel("   ", "left", "right", 40); got != "   " {
		t.Errorf("expected blank input unchanged, got %q", got)
	}
}

func TestRenderCatalogTableShowsAllRows(t *testing.T) {
	out := stripANSI(RenderCatalogTable(sampleItems(), sampleFieldSpec(), true, 0, 0, 100))
	for _, want := range []string{"TITLE", "DETAILS", "Apple Pie", "Banana Bread", "apple tart", "Cherry Cobbler"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table output, got:\n%s", want, out)
		}
	}
}

func TestRenderCatalogTableEmptyItems(t *testing.T) {
	out := stripANSI(RenderCatalogTable(nil, catalog.DefaultFieldSpec(), true, 0, 0, 100))
	if !strings.Contains(out, "TITLE") {
		t.Errorf("expected header even with no rows, got:\n%s", out)
	}
}
