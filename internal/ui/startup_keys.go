package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys replays key tokens against the model before the first
// frame. Tokens mix Vim-like named keys ("<F1>", "<Esc>") with literal text
// ("app"), so `--keys "<F8> pie"` switches to the table view and types a
// query. It mutates the provided model in place.
func ApplyStartupKeys(m *Model, keys []string) {
	if len(keys) == 0 || m == nil {
		return
	}
	send := func(msg tea.KeyPressMsg) {
		if updated, _ := m.Update(msg); updated != nil {
			if um, ok := updated.(*Model); ok {
				*m = *um
			}
		}
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		// Leading backslash forces literal text (e.g., "\\<f12>").
		if strings.HasPrefix(token, `\`) {
			for _, r := range strings.TrimPrefix(token, `\`) {
				send(tea.KeyPressMsg{Code: r, Text: string(r)})
			}
			continue
		}

		for _, segment := range parseTokenSegments(token) {
			if segment.isNamedKey {
				if msgs, ok := keyMsgsFromToken(segment.text); ok {
					for _, msg := range msgs {
						send(msg)
					}
				}
				continue
			}
			for _, r := range segment.text {
				send(tea.KeyPressMsg{Code: r, Text: string(r)})
			}
		}
	}
}

// tokenSegment is a parsed piece of a startup-key token: either a named key
// in angle brackets or a run of literal text.
type tokenSegment struct {
	text       string
	isNamedKey bool
}

// parseTokenSegments splits a token into named-key and literal-text segments.
// Example: "<F1>app" -> [{"<F1>", named}, {"app", literal}].
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token

	for len(remaining) > 0 {
		startIdx := strings.Index(remaining, "<")
		if startIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if startIdx > 0 {
			segments = append(segments, tokenSegment{text: remaining[:startIdx]})
		}
		endIdx := strings.Index(remaining[startIdx:], ">")
		if endIdx == -1 {
			// No closing bracket; the rest is literal text.
			segments = append(segments, tokenSegment{text: remaining[startIdx:]})
			break
		}
		segments = append(segments, tokenSegment{
			text:       remaining[startIdx : startIdx+endIdx+1],
			isNamedKey: true,
		})
		remaining = remaining[startIdx+endIdx+1:]
	}

	return segments
}

// keyMsgsFromToken parses a Vim-like token into key messages.
// Examples: "<Esc>", "<CR>", "<Tab>", "<Space>", "<BS>", "<C-c>", "<F3>".
// Only <...> forms are treated as keys; everything else is literal text.
func keyMsgsFromToken(token string) ([]tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return nil, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">")
	lower := strings.ToLower(inner)
	switch lower {
	case "esc", "c-[", "escape":
		return []tea.KeyPressMsg{{Code: tea.KeyEscape}}, true
	case "cr", "enter", "return":
		return []tea.KeyPressMsg{{Code: tea.KeyEnter}}, true
	case "tab":
		return []tea.KeyPressMsg{{Code: tea.KeyTab}}, true
	case "space":
		return []tea.KeyPressMsg{{Code: ' ', Text: " "}}, true
	case "bs", "backspace":
		return []tea.KeyPressMsg{{Code: tea.KeyBackspace}}, true
	case "left":
		return []tea.KeyPressMsg{{Code: tea.KeyLeft}}, true
	case "right":
		return []tea.KeyPressMsg{{Code: tea.KeyRight}}, true
	case "up":
		return []tea.KeyPressMsg{{Code: tea.KeyUp}}, true
	case "down":
		return []tea.KeyPressMsg{{Code: tea.KeyDown}}, true
	case "home":
		return []tea.KeyPressMsg{{Code: tea.KeyHome}}, true
	case "end":
		return []tea.KeyPressMsg{{Code: tea.KeyEnd}}, true
	case "c-c":
		return []tea.KeyPressMsg{{Code: 0x03}}, true // Ctrl+C
	case "c-g":
		return []tea.KeyPressMsg{{Code: 0x07}}, true // Ctrl+G
	}
	if strings.HasPrefix(lower, "f") {
		fkeys := map[string]rune{
			"1": tea.KeyF1, "2": tea.KeyF2, "3": tea.KeyF3, "4": tea.KeyF4,
			"5": tea.KeyF5, "6": tea.KeyF6, "7": tea.KeyF7, "8": tea.KeyF8,
			"9": tea.KeyF9, "10": tea.KeyF10, "11": tea.KeyF11, "12": tea.KeyF12,
		}
		if code, ok := fkeys[strings.TrimPrefix(lower, "f")]; ok {
			return []tea.KeyPressMsg{{Code: code}}, true
		}
	}
	return nil, false
}
