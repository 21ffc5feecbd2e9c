package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	ui "github.com/oakwood-commons/winnow/internal/ui"
)

type themeSelectionError struct {
	Selected     string
	Available    []string
	DefaultTheme string
}

func (e themeSelectionError) Error() string {
	return fmt.Sprintf("unknown theme %q\navailable themes: %v\ndefault theme: %s", e.Selected, e.Available, e.DefaultTheme)
}

func defaultThemeName(cfg ui.ThemeConfigFile) string {
	if name := strings.TrimSpace(cfg.Theme.Default); name != "" {
		return name
	}
	return "dark"
}

func applyThemeFromConfig(cfg ui.ThemeConfigFile, cliTheme string, themeFlagSet bool) error {
	selectedTheme := strings.TrimSpace(cliTheme)
	if !themeFlagSet {
		selectedTheme = ""
	}
	if selectedTheme == "" {
		selectedTheme = defaultThemeName(cfg)
	}

	applyTheme := func(name string) bool {
		if name == "" {
			return false
		}
		if th, ok := cfg.Themes[name]; ok {
			ui.SetTheme(ui.ThemeFromConfig(th))
			return true
		}
		if th, ok := ui.GetTheme(name); ok {
			ui.SetTheme(th)
			return true
		}
		return false
	}

	if applyTheme(selectedTheme) {
		return nil
	}

	if !themeFlagSet {
		fallback := defaultThemeName(cfg)
		if fallback != selectedTheme && applyTheme(fallback) {
			return nil
		}
	}

	available := getAllAvailableThemes(&cfg)
	def := defaultThemeName(cfg)
	return themeSelectionError{Selected: selectedTheme, Available: available, DefaultTheme: def}
}

func printThemeSelectionError(w io.Writer, err error) {
	var themeErr themeSelectionError
	if errors.As(err, &themeErr) {
		fmt.Fprintf(w, "unknown theme %q\n", themeErr.Selected)
		fmt.Fprintf(w, "available themes: %v\n", themeErr.Available)
		fmt.Fprintf(w, "default theme: %s\n", themeErr.DefaultTheme)
		return
	}
	fmt.Fprintln(w, err)
}

// loadConfigState centralizes config load + theme/menu application for CLI
// flows. applyMenu wires the menu config into the keybinding tables when the
// file defines one.
func loadConfigState(path string, cliTheme string, themeFlagSet bool, applyMenu bool) (ui.ThemeConfigFile, error) {
	cfg, err := loadMergedConfig(path)
	if err != nil {
		return cfg, err
	}

	if err := ui.InitializeThemes(&cfg); err != nil {
		// Keep going with the built-in dark theme.
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize themes: %v\n", err)
	}

	if err := applyThemeFromConfig(cfg, cliTheme, themeFlagSet); err != nil {
		return cfg, err
	}

	if applyMenu && menuHasData(cfg.Menu) {
		ui.SetMenuConfig(ui.MenuFromConfig(cfg.Menu))
	}

	return cfg, nil
}
