package ui

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"

	tea "charm.land/bubbletea/v2"
)

// MenuItem represents a single footer action.
type MenuItem struct {
	Label    string
	Action   string
	Enabled  bool
	HelpText string
	// Key bindings for this action in each mode
	Keys MenuKeyBindings
}

// MenuConfig defines labels, enabled state and key bindings for the footer actions.
type MenuConfig struct {
	Items map[string]MenuItem
}

// menuActionOrder fixes the footer and help overlay ordering.
var menuActionOrder = []string{"help", "copy", "open", "view", "quit"}

// KeyActionMap maps keys to actions for a specific mode.
type KeyActionMap map[string]string

var (
	defaultMenuOnce         sync.Once
	defaultMenuConfig       MenuConfig
	defaultMenuBuilding     int32
	defaultMenuTemplateData map[string]any
	currentMenuOnce         sync.Once
	currentMenuConfig       MenuConfig
	currentMenuActions      = defaultMenuActions()
	// Dynamic key-to-action mappings per mode, built from config
	keyActionMaps = make(map[KeyMode]KeyActionMap)
)

// DefaultMenuConfig returns the menu sourced from the embedded default configuration.
// Falls back to the hard-coded menu only if the embedded config cannot be read.
func DefaultMenuConfig() MenuConfig {
	// Protect against re-entrancy before acquiring sync.Once; a recursive call would
	// otherwise deadlock while the Once lock is held. If we detect in-progress
	// initialization, fall back to the hard-coded menu.
	if !atomic.CompareAndSwapInt32(&defaultMenuBuilding, 0, 1) {
		return fallbackDefaultMenuConfig()
	}
	defer atomic.StoreInt32(&defaultMenuBuilding, 0)

	defaultMenuOnce.Do(func() {
		cfg, err := EmbeddedDefaultConfig()
		if err != nil {
			defaultMenuConfig = fallbackDefaultMenuConfig()
			return
		}
		menu := MenuFromConfig(cfg.Menu)
		helpText := GenerateHelpText(menu, DefaultKeyMode)
		defaultMenuTemplateData = map[string]any{
			"config": map[string]any{
				"app": map[string]any{
					"about_line": fmt.Sprintf("%s: %s", cfg.About.Name, strings.TrimPrefix(cfg.About.Description, "A ")),
					"about": map[string]any{
						"name":        cfg.About.Name,
						"version":     cfg.About.Version,
						"description": cfg.About.Description,
						"license":     cfg.About.License,
						"author":      cfg.About.Author,
					},
					"help": map[string]any{
						"text": helpText,
					},
				},
			},
		}
		renderMenuTemplates(&menu, defaultMenuTemplateData)
		defaultMenuConfig = menu
	})

	if defaultMenuTemplateData != nil {
		// Re-render on each call to handle previously cached templates from earlier runs.
		renderMenuTemplates(&defaultMenuConfig, defaultMenuTemplateData)
	}

	return defaultMenuConfig
}

func fallbackDefaultMenuConfig() MenuConfig {
	helpItem := MenuItem{Label: "Help", Action: "help", Enabled: true, HelpText: "Show or hide this overlay", Keys: MenuKeyBindings{Function: "f1", Vim: "?", Emacs: "f1"}}
	copyItem := MenuItem{Label: "Copy", Action: "copy", Enabled: true, HelpText: "Copy the selected title to the clipboard", Keys: MenuKeyBindings{Function: "f5", Vim: "y", Emacs: "alt+w"}}
	openItem := MenuItem{Label: "Open", Action: "open", Enabled: true, HelpText: "Open the selected entry's URL in a browser", Keys: MenuKeyBindings{Function: "f7", Vim: "o", Emacs: "alt+o"}}
	viewItem := MenuItem{Label: "View", Action: "view", Enabled: true, HelpText: "Toggle between card list and table view", Keys: MenuKeyBindings{Function: "f8", Vim: "v", Emacs: "ctrl+t"}}
	quitItem := MenuItem{Label: "Quit", Action: "quit", Enabled: true, HelpText: "Exit", Keys: MenuKeyBindings{Function: "f10", Vim: "q", Emacs: "ctrl+q"}}

	menu := MenuConfig{
		Items: map[string]MenuItem{
			"help": helpItem,
			"copy": copyItem,
			"open": openItem,
			"view": viewItem,
			"quit": quitItem,
		},
	}
	// Build key-action maps for fallback config
	buildKeyActionMaps(menu)
	return menu
}

// SetMenuConfig overrides the current menu configuration.
func SetMenuConfig(cfg MenuConfig) {
	currentMenuConfig = cfg
	// Update per-mode keybindings from the new config
	UpdateKeyBindingsFromConfig(cfg)
}

// CurrentMenuConfig returns the active menu configuration.
func CurrentMenuConfig() MenuConfig {
	currentMenuOnce.Do(func() {
		currentMenuConfig = DefaultMenuConfig()
	})
	return currentMenuConfig
}

// MenuAction executes a menu action and may return a Bubble Tea command.
type MenuAction func(*Model) tea.Cmd

// defaultMenuActions returns the built-in menu action handlers.
func defaultMenuActions() map[string]MenuAction {
	return map[string]MenuAction{
		"help": menuActionHelp,
		"copy": menuActionCopy,
		"open": menuActionOpen,
		"view": menuActionView,
		"quit": menuActionQuit,
		"noop": func(_ *Model) tea.Cmd { return nil },
		"":     func(_ *Model) tea.Cmd { return nil },
	}
}

// SetMenuActions overrides all menu actions.
func SetMenuActions(actions map[string]MenuAction) {
	if actions == nil {
		currentMenuActions = defaultMenuActions()
		return
	}
	currentMenuActions = actions
}

// RegisterMenuAction registers or replaces a single menu action handler.
func RegisterMenuAction(name string, action MenuAction) {
	if currentMenuActions == nil {
		currentMenuActions = defaultMenuActions()
	}
	currentMenuActions[name] = action
}

// CurrentMenuActions returns the active menu actions map.
func CurrentMenuActions() map[string]MenuAction {
	if currentMenuActions == nil {
		currentMenuActions = defaultMenuActions()
	}
	return currentMenuActions
}

// MenuFromConfig builds a MenuConfig from YAML config.
func MenuFromConfig(cfg MenuConfigYAML) MenuConfig {
	menu := fallbackDefaultMenuConfig()
	base := menu.Items
	menu.Items = make(map[string]MenuItem, len(base))
	for name, item := range base {
		menu.Items[name] = item
	}

	actionItems := []struct {
		name string
		cfg  MenuItemConfig
	}{
		{"help", cfg.Help},
		{"copy", cfg.Copy},
		{"open", cfg.Open},
		{"view", cfg.View},
		{"quit", cfg.Quit},
	}

	for _, entry := range actionItems {
		if entry.cfg.Label == "" && entry.cfg.Enabled == nil {
			continue // Skip empty items
		}
		mi := menu.Items[entry.name]
		if entry.cfg.Label != "" {
			mi.Label = entry.cfg.Label
		}
		if entry.cfg.HelpText != "" {
			mi.HelpText = entry.cfg.HelpText
		}
		// Action defaults to the item name, but can be overridden.
		if entry.cfg.Action != "" {
			mi.Action = entry.cfg.Action
		} else if mi.Action == "" {
			mi.Action = entry.name
		}
		if entry.cfg.Enabled != nil {
			mi.Enabled = *entry.cfg.Enabled
		}
		if entry.cfg.Keys != (MenuKeyBindings{}) {
			mi.Keys = entry.cfg.Keys
		}
		menu.Items[entry.name] = mi
	}

	// Build key-to-action maps for each mode
	buildKeyActionMaps(menu)

	return menu
}

// buildKeyActionMaps builds the key-to-action mappings for each mode from the menu config.
func buildKeyActionMaps(menu MenuConfig) {
	keyActionMaps[KeyModeFunction] = make(KeyActionMap)
	keyActionMaps[KeyModeVim] = make(KeyActionMap)
	keyActionMaps[KeyModeEmacs] = make(KeyActionMap)

	for name, item := range menu.Items {
		if !item.Enabled {
			continue
		}
		action := item.Action
		if action == "" {
			action = name
		}
		if item.Keys.Function != "" {
			keyActionMaps[KeyModeFunction][strings.ToLower(item.Keys.Function)] = action
		}
		if item.Keys.Vim != "" {
			keyActionMaps[KeyModeVim][item.Keys.Vim] = action
		}
		if item.Keys.Emacs != "" {
			keyActionMaps[KeyModeEmacs][item.Keys.Emacs] = action
		}
	}

	// Also update the per-mode keybinding maps for key handling
	UpdateKeyBindingsFromConfig(menu)
}

// GetKeyActionMap returns the key-to-action map for a specific key mode.
func GetKeyActionMap(mode KeyMode) KeyActionMap {
	if m, ok := keyActionMaps[mode]; ok {
		return m
	}
	return nil
}

// GetActionForKey returns the action associated with a key in the given mode.
func GetActionForKey(mode KeyMode, key string) string {
	if m := GetKeyActionMap(mode); m != nil {
		return m[key]
	}
	return ""
}

// GetItemForAction returns the MenuItem for a given action name.
func GetItemForAction(actionName string) *MenuItem {
	menu := CurrentMenuConfig()
	if item, ok := menu.Items[actionName]; ok {
		return &item
	}
	return nil
}

func renderMenuTemplates(menu *MenuConfig, data map[string]interface{}) {
	render := func(val string) string {
		if !strings.Contains(val, "{{") {
			return val
		}
		tmpl, err := template.New("menu").Option("missingkey=zero").Parse(val)
		if err != nil {
			return val
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return val
		}
		return buf.String()
	}

	for name, item := range menu.Items {
		item.Label = render(item.Label)
		item.HelpText = render(item.HelpText)
		menu.Items[name] = item
	}
}

// OrderedMenuItems returns the menu items in footer display order.
// Disabled and unknown items are skipped.
func OrderedMenuItems(cfg MenuConfig) []struct {
	Name string
	Item MenuItem
} {
	out := make([]struct {
		Name string
		Item MenuItem
	}, 0, len(menuActionOrder))
	for _, name := range menuActionOrder {
		item, ok := cfg.Items[name]
		if !ok || !item.Enabled {
			continue
		}
		out = append(out, struct {
			Name string
			Item MenuItem
		}{Name: name, Item: item})
	}
	return out
}
