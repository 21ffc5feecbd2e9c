package browse

import (
	"strings"

	"github.com/oakwood-commons/winnow/internal/ui"
	"github.com/oakwood-commons/winnow/pkg/catalog"
)

// Config holds host-provided settings for running the catalog browser.
type Config struct {
	AppName    string
	SourceName string // shown in the catalog border (e.g. a file name)
	Width      int    // 0 = auto-detect
	Height     int    // 0 = auto-detect
	NoColor    bool

	// Collection is a dot path to the entry array inside the document.
	// Empty auto-detects (root array, then "works", then the first
	// array-of-objects key).
	Collection string

	// FieldSpec maps entry fields onto the card list and table columns.
	// The zero value uses the conventional "title" mapping.
	FieldSpec catalog.FieldSpec

	// SubtitleLines caps how many lines the subtitle occupies per card.
	SubtitleLines int

	Theme     ui.Theme
	ThemeName string // Alternative to Theme: set a built-in theme by name (dark, light, mono)
	Menu      *ui.MenuConfig

	KeyMode string // Keybinding mode: "function" (default), "vim", or "emacs"
	View    string // Initial catalog view: "list" (default) or "table"

	InitialQuery string   // pre-filled filter query
	StartKeys    []string // keys replayed on startup, e.g. {"<F1>"} or {"pie"}

	DebugEnabled bool
	DebugSink    func(string)
}

// DefaultConfig returns a baseline browser config with the same defaults as
// the CLI.
func DefaultConfig() Config {
	embedded, err := ui.EmbeddedDefaultConfig()

	appName := "winnow"
	spec := catalog.DefaultFieldSpec()
	keyMode := string(ui.DefaultKeyMode)
	view := string(ui.DefaultViewMode)

	if err == nil {
		if name := strings.TrimSpace(embedded.About.Name); name != "" {
			appName = name
		}
		if embedded.Display.TitleField != nil && strings.TrimSpace(*embedded.Display.TitleField) != "" {
			spec.Title = strings.TrimSpace(*embedded.Display.TitleField)
		}
		if embedded.Display.SubtitleField != nil {
			spec.Subtitle = strings.TrimSpace(*embedded.Display.SubtitleField)
		}
		if len(embedded.Display.BadgeFields) > 0 {
			spec.Badges = embedded.Display.BadgeFields
		}
		if len(embedded.Display.SecondaryFields) > 0 {
			spec.Secondary = embedded.Display.SecondaryFields
		}
		if embedded.Features.KeyMode != nil && ui.IsValidKeyMode(*embedded.Features.KeyMode) {
			keyMode = *embedded.Features.KeyMode
		}
		if embedded.Display.View != nil {
			view = string(ui.ParseViewMode(*embedded.Display.View))
		}
	}

	menu := ui.DefaultMenuConfig()

	return Config{
		AppName:   appName,
		FieldSpec: spec,
		Theme:     ui.DefaultTheme(),
		Menu:      &menu,
		KeyMode:   keyMode,
		View:      view,
	}
}

// Apply applies the config to the UI globals.
// (Model-scoped fields like FieldSpec are applied in Run.)
func (c Config) Apply() {
	// ThemeName takes precedence over Theme if both are set
	if c.ThemeName != "" {
		if err := ui.SetThemeByName(c.ThemeName); err != nil {
			// Fall back so the browser still starts with an unknown name.
			darkTheme, _ := ui.GetTheme("dark")
			ui.SetTheme(darkTheme)
		}
	} else if c.Theme != (ui.Theme{}) {
		ui.SetTheme(c.Theme)
	}
	if c.Menu != nil {
		ui.SetMenuConfig(*c.Menu)
	}
}
