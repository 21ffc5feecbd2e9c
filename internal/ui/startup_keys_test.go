package ui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestParseTokenSegments(t *testing.T) {
	segs := parseTokenSegments("<F1>app")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %#v", len(segs), segs)
	}
	if !segs[0].isNamedKey || segs[0].text != "<F1>" {
		t.Errorf("expected named <F1> segment, got %#v", segs[0])
	}
	if segs[1].isNamedKey || segs[1].text != "app" {
		t.Errorf("expected literal app segment, got %#v", segs[1])
	}
}

func TestParseTokenSegmentsUnclosedBracket(t *testing.T) {
	segs := parseTokenSegments("a<f1")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %#v", segs)
	}
	if segs[1].isNamedKey {
		t.Errorf("unclosed bracket must stay literal, got %#v", segs[1])
	}
	if segs[1].text != "<f1" {
		t.Errorf("expected literal %q, got %q", "<f1", segs[1].text)
	}
}

func TestKeyMsgsFromToken(t *testing.T) {
	cases := []struct {
		token string
		code  rune
	}{
		{"<Esc>", tea.KeyEscape},
		{"<CR>", tea.KeyEnter},
		{"<Tab>", tea.KeyTab},
		{"<BS>", tea.KeyBackspace},
		{"<Home>", tea.KeyHome},
		{"<F8>", tea.KeyF8},
		{"<f12>", tea.KeyF12},
	}
	for _, tc := range cases {
		msgs, ok := keyMsgsFromToken(tc.token)
		if !ok || len(msgs) != 1 {
			t.Errorf("keyMsgsFromToken(%q): expected one message, got %v %v", tc.token, msgs, ok)
			continue
		}
		if msgs[0].Code != tc.code {
			t.Errorf("keyMsgsFromToken(%q): expected code %v, got %v", tc.token, tc.code, msgs[0].Code)
		}
	}

	if _, ok := keyMsgsFromToken("app"); ok {
		t.Error("bare text must not parse as a named key")
	}
	if _, ok := keyMsgsFromToken("<bogus>"); ok {
		t.Error("unknown named key must not parse")
	}
}

func TestApplyStartupKeysTypesQuery(t *testing.T) {
	m := newTestModel()
	ApplyStartupKeys(m, []string{"pie"})
	if got := m.Controller.Query(); got != "pie" {
		t.Errorf("expected query %q, got %q", "pie", got)
	}
	if !titlesEqual(visibleTitles(m), []string{"Apple Pie"}) {
		t.Errorf("expected only Apple Pie visible, got %v", visibleTitles(m))
	}
}

func TestApplyStartupKeysNamedKeyTogglesView(t *testing.T) {
	m := newTestModel()
	ApplyStartupKeys(m, []string{"<F8>"})
	if m.ViewMode != ViewModeTable {
		t.Errorf("expected table view after <F8>, got %q", m.ViewMode)
	}
}

func TestApplyStartupKeysMixedToken(t *testing.T) {
	m := newTestModel()
	ApplyStartupKeys(m, []string{"<F8>apple"})
	if m.ViewMode != ViewModeTable {
		t.Errorf("expected table view, got %q", m.ViewMode)
	}
	if got := m.Controller.Query(); got != "apple" {
		t.Errorf("expected query %q, got %q", "apple", got)
	}
}

func TestApplyStartupKeysBackslashForcesLiteral(t *testing.T) {
	m := newTestModel()
	ApplyStartupKeys(m, []string{`\<f1>`})
	if m.HelpVisible {
		t.Error("escaped token must not trigger the help overlay")
	}
	if got := m.Controller.Query(); got != "<f1>" {
		t.Errorf("expected literal query %q, got %q", "<f1>", got)
	}
}

func TestApplyStartupKeysSkipsEmptyTokens(t *testing.T) {
	m := newTestModel()
	ApplyStartupKeys(m, []string{"", "  ", "a"})
	if got := m.Controller.Query(); got != "a" {
		t.Errorf("expected query %q, got %q", "a", got)
	}
}

func TestParseViewMode(t *testing.T) {
	cases := map[string]ViewMode{
		"table":   ViewModeTable,
		" TABLE ": ViewModeTable,
		"list":    ViewModeList,
		"cards":   ViewModeList,
		"":        ViewModeList,
		"bogus":   ViewModeList,
	}
	for in, want := range cases {
		if got := ParseViewMode(in); got != want {
			t.Errorf("ParseViewMode(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestViewModeToggled(t *testing.T) {
	if ViewModeList.toggled() != ViewModeTable {
		t.Error("expected list to toggle to table")
	}
	if ViewModeTable.toggled() != ViewModeList {
		t.Error("expected table to toggle to list")
	}
}
