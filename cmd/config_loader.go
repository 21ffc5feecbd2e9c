package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/winnow/internal/ui"
)

// configLoader centralizes config merging so callers avoid duplicating the
// default-plus-user logic.
type configLoader struct {
	defaultConfig func() ([]byte, error)
}

var cfgLoader = configLoader{defaultConfig: loadDefaultConfigYAML}

func loadMergedConfig(cfgPath string) (ui.ThemeConfigFile, error) {
	return cfgLoader.loadMergedConfig(cfgPath)
}

func loadDefaultConfigRaw() ([]byte, error) {
	return cfgLoader.loadDefaultConfigRaw()
}

func sanitizeConfig(cfg ui.ThemeConfigFile) outputConfig {
	return cfgLoader.sanitizeConfig(cfg)
}

func loadDefaultConfigYAML() ([]byte, error) {
	data := ui.DefaultConfigYAML()
	if len(data) == 0 {
		return nil, fmt.Errorf("embedded default config is empty")
	}
	return data, nil
}

// nestedConfig mirrors the on-disk app/ui schema.
type nestedConfig struct {
	App ui.AppConfig `yaml:"app"`
	UI  uiBlock      `yaml:"ui"`
}

// uiBlock groups UI config for nested input/output.
type uiBlock struct {
	Theme    ui.ThemeSelectionConfig   `yaml:"theme,omitempty" json:"theme,omitempty"`
	Features ui.FeaturesConfig         `yaml:"features,omitempty" json:"features,omitempty"`
	Display  ui.DisplayConfig          `yaml:"display,omitempty" json:"display,omitempty"`
	Themes   map[string]ui.ThemeConfig `yaml:"themes,omitempty" json:"themes,omitempty"`
	Menu     ui.MenuConfigYAML         `yaml:"menu,omitempty" json:"menu,omitempty"`
}

// outputConfig mirrors ThemeConfigFile without the inline legacy theme field.
type outputConfig struct {
	App ui.AppConfig `yaml:"app,omitempty" json:"app,omitempty"`
	UI  uiBlock      `yaml:"ui,omitempty" json:"ui,omitempty"`
}

func (l configLoader) loadMergedConfig(cfgPath string) (ui.ThemeConfigFile, error) {
	var cfg ui.ThemeConfigFile

	defaultData, err := l.loadDefaultConfigRaw()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}

	var defaults nestedConfig
	if err := yaml.Unmarshal(defaultData, &defaults); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}

	// The embedded config is the authoritative source of defaults.
	cfg = mergeConfigFromNested(defaults, ui.ThemeConfigFile{})
	if cfg.Theme.Default == "" || len(cfg.Themes) == 0 {
		return cfg, fmt.Errorf("default config is missing required theme defaults")
	}

	if cfgPath != "" {
		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return cfg, err
		}

		var nested nestedConfig
		if err := yaml.Unmarshal(data, &nested); err == nil && nestedHasData(nested) {
			cfg = mergeConfigFromNested(nested, cfg)
		} else {
			// Fall back to the flat single-document schema (themes map or
			// one inline theme at the top level).
			fileCfg, err := ui.LoadThemeConfig(cfgPath)
			if err != nil {
				return cfg, err
			}
			if fileCfg.Theme.Default != "" {
				cfg.Theme.Default = fileCfg.Theme.Default
			}
			if fileCfg.Debug.MaxEvents != nil {
				cfg.Debug.MaxEvents = fileCfg.Debug.MaxEvents
			}
			if menuHasData(fileCfg.Menu) {
				cfg.Menu = mergeMenuConfig(cfg.Menu, fileCfg.Menu)
			}
			if len(fileCfg.Themes) > 0 {
				merged := make(map[string]ui.ThemeConfig)
				for name, themeCfg := range fileCfg.Themes {
					base, ok := cfg.Themes[name]
					if !ok {
						darkTheme, _ := ui.GetTheme("dark")
						base = ui.ThemeConfigFromTheme(darkTheme)
					}
					merged[name] = mergeThemeConfig(base, themeCfg)
				}
				cfg.Themes = merged
			}
		}
	}

	// Clear the inline legacy theme so it never round-trips as empty fields.
	cfg.LegacyTheme = ui.ThemeConfig{}

	buildData := buildVersionData(&cfg)
	applyBuildData(&cfg, buildData)

	// The help overlay text is generated, not configured; expose it so
	// templates can refer to {{.config.app.help.text}}.
	menuConfig := ui.MenuFromConfig(cfg.Menu)
	cfg.HelpMenu.Text = ui.GenerateHelpText(menuConfig, ui.DefaultKeyMode)

	cfg = processConfigTemplates(cfg)

	return cfg, nil
}

func (l configLoader) loadDefaultConfigRaw() ([]byte, error) {
	if l.defaultConfig != nil {
		return l.defaultConfig()
	}
	return loadDefaultConfigYAML()
}

func (l configLoader) sanitizeConfig(cfg ui.ThemeConfigFile) outputConfig {
	// Dynamic about fields (version, go_version, build_os, build_arch,
	// git_commit) come from build info and are dropped from config output.
	sanitizedAbout := ui.AboutConfig{
		Name:             cfg.About.Name,
		Description:      cfg.About.Description,
		License:          cfg.About.License,
		RepositoryURL:    cfg.About.RepositoryURL,
		DocumentationURL: cfg.About.DocumentationURL,
		Author:           cfg.About.Author,
		Details:          cfg.About.Details,
	}
	return outputConfig{
		App: ui.AppConfig{
			About: sanitizedAbout,
			CLI:   cfg.CLI,
			Debug: cfg.Debug,
		},
		UI: uiBlock{
			Theme:    cfg.Theme,
			Features: cfg.Features,
			Display:  cfg.Display,
			Themes:   cfg.Themes,
			Menu:     cfg.Menu,
		},
	}
}

// nestedHasData reports whether a decoded user file actually used the
// nested schema, as opposed to decoding to the zero value.
func nestedHasData(n nestedConfig) bool {
	if n.App.About.Name != "" || n.App.About.Description != "" || n.App.Debug.MaxEvents != nil {
		return true
	}
	if n.UI.Theme.Default != "" || len(n.UI.Themes) > 0 || menuHasData(n.UI.Menu) {
		return true
	}
	if n.UI.Features.KeyMode != nil {
		return true
	}
	d := n.UI.Display
	return d.TitleField != nil || d.SubtitleField != nil || len(d.BadgeFields) > 0 ||
		len(d.SecondaryFields) > 0 || d.SubtitleLines != nil || d.View != nil
}

// mergeConfigFromNested merges a nested config structure into the base config.
func mergeConfigFromNested(nested nestedConfig, base ui.ThemeConfigFile) ui.ThemeConfigFile {
	cfg := base
	if nested.App.About.Name != "" {
		cfg.About.Name = nested.App.About.Name
	}
	if nested.App.About.Description != "" {
		cfg.About.Description = nested.App.About.Description
	}
	// Dynamic fields (version, go_version, build_os, build_arch, git_commit)
	// are populated from build info, not from config files.
	if nested.App.About.License != "" {
		cfg.About.License = nested.App.About.License
	}
	if nested.App.About.RepositoryURL != "" {
		cfg.About.RepositoryURL = nested.App.About.RepositoryURL
	}
	if nested.App.About.DocumentationURL != "" {
		cfg.About.DocumentationURL = nested.App.About.DocumentationURL
	}
	if nested.App.About.Author != "" {
		cfg.About.Author = nested.App.About.Author
	}
	if len(nested.App.About.Details) > 0 {
		cfg.About.Details = nested.App.About.Details
	}
	if nested.App.CLI.HelpHeaderTemplate != "" {
		cfg.CLI.HelpHeaderTemplate = nested.App.CLI.HelpHeaderTemplate
	}
	if nested.App.CLI.HelpDescription != "" {
		cfg.CLI.HelpDescription = nested.App.CLI.HelpDescription
	}
	if nested.App.CLI.HelpUsage != "" {
		cfg.CLI.HelpUsage = nested.App.CLI.HelpUsage
	}
	if nested.App.Debug.MaxEvents != nil {
		cfg.Debug.MaxEvents = nested.App.Debug.MaxEvents
	}
	if nested.UI.Theme.Default != "" {
		cfg.Theme.Default = nested.UI.Theme.Default
	}
	if nested.UI.Features.KeyMode != nil {
		cfg.Features.KeyMode = nested.UI.Features.KeyMode
	}
	if nested.UI.Display.TitleField != nil {
		cfg.Display.TitleField = nested.UI.Display.TitleField
	}
	if nested.UI.Display.SubtitleField != nil {
		cfg.Display.SubtitleField = nested.UI.Display.SubtitleField
	}
	if len(nested.UI.Display.BadgeFields) > 0 {
		cfg.Display.BadgeFields = nested.UI.Display.BadgeFields
	}
	if len(nested.UI.Display.SecondaryFields) > 0 {
		cfg.Display.SecondaryFields = nested.UI.Display.SecondaryFields
	}
	if nested.UI.Display.SubtitleLines != nil {
		cfg.Display.SubtitleLines = nested.UI.Display.SubtitleLines
	}
	if nested.UI.Display.View != nil {
		cfg.Display.View = nested.UI.Display.View
	}
	if len(nested.UI.Themes) > 0 {
		merged := make(map[string]ui.ThemeConfig)
		for name, themeCfg := range nested.UI.Themes {
			baseTheme := cfg.Themes[name]
			merged[name] = mergeThemeConfig(baseTheme, themeCfg)
		}
		// Themes absent from the user file keep their defaults.
		for name, themeCfg := range cfg.Themes {
			if _, ok := merged[name]; !ok {
				merged[name] = themeCfg
			}
		}
		cfg.Themes = merged
	}
	if menuHasData(nested.UI.Menu) {
		cfg.Menu = mergeMenuConfig(cfg.Menu, nested.UI.Menu)
	}
	return cfg
}

// processConfigTemplates processes Go templates in config string values.
// Templates can access:
//   - .config - the merged config structure
//   - .build - build information (version, go_version, build_os, build_arch, git_commit)
func processConfigTemplates(cfg ui.ThemeConfigFile) ui.ThemeConfigFile {
	templateData := configTemplateData(cfg)

	if len(cfg.About.Details) > 0 {
		processed := make([]string, 0, len(cfg.About.Details))
		for _, detail := range cfg.About.Details {
			processed = append(processed, processTemplateString(detail, templateData))
		}
		cfg.About.Details = processed
	}

	return cfg
}

// configTemplateData builds the data map handed to config templates.
func configTemplateData(cfg ui.ThemeConfigFile) map[string]interface{} {
	return map[string]interface{}{
		"config": map[string]interface{}{
			"app": map[string]interface{}{
				"about": map[string]interface{}{
					"name":              cfg.About.Name,
					"description":       cfg.About.Description,
					"version":           cfg.About.Version,
					"go_version":        cfg.About.GoVersion,
					"build_os":          cfg.About.BuildOS,
					"build_arch":        cfg.About.BuildArch,
					"git_commit":        cfg.About.GitCommit,
					"license":           cfg.About.License,
					"repository_url":    cfg.About.RepositoryURL,
					"documentation_url": cfg.About.DocumentationURL,
					"author":            cfg.About.Author,
					"details":           cfg.About.Details,
				},
				"cli": map[string]interface{}{
					"help_header_template": cfg.CLI.HelpHeaderTemplate,
					"help_description":     cfg.CLI.HelpDescription,
					"help_usage":           cfg.CLI.HelpUsage,
				},
				"debug": map[string]interface{}{
					"max_events": cfg.Debug.MaxEvents,
				},
				"help": map[string]interface{}{
					"text": cfg.HelpMenu.Text,
				},
			},
			"ui": map[string]interface{}{
				"theme": map[string]interface{}{
					"default": cfg.Theme.Default,
				},
				"features": map[string]interface{}{
					"key_mode": cfg.Features.KeyMode,
				},
				"display": map[string]interface{}{
					"title_field":      cfg.Display.TitleField,
					"subtitle_field":   cfg.Display.SubtitleField,
					"badge_fields":     cfg.Display.BadgeFields,
					"secondary_fields": cfg.Display.SecondaryFields,
					"subtitle_lines":   cfg.Display.SubtitleLines,
					"view":             cfg.Display.View,
				},
			},
		},
		"build": map[string]interface{}{
			"version":    cfg.About.Version,
			"go_version": cfg.About.GoVersion,
			"build_os":   cfg.About.BuildOS,
			"build_arch": cfg.About.BuildArch,
			"git_commit": cfg.About.GitCommit,
		},
	}
}

// processTemplateString processes a template string, returning the original
// string if templating fails.
func processTemplateString(text string, data map[string]interface{}) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	tmpl, err := template.New("config").Parse(text)
	if err != nil {
		return text
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return text
	}

	return buf.String()
}

func menuHasData(menu ui.MenuConfigYAML) bool {
	items := []ui.MenuItemConfig{
		menu.Help, menu.Copy, menu.Open, menu.View, menu.Quit,
	}
	for _, it := range items {
		if it.Label != "" || it.Action != "" || it.Enabled != nil || it.HelpText != "" ||
			it.Keys.Function != "" || it.Keys.Vim != "" || it.Keys.Emacs != "" {
			return true
		}
	}
	return false
}

func mergeMenuConfig(base, override ui.MenuConfigYAML) ui.MenuConfigYAML {
	out := base
	apply := func(src ui.MenuItemConfig, dst *ui.MenuItemConfig) {
		if src.Label != "" {
			dst.Label = src.Label
		}
		if src.HelpText != "" {
			dst.HelpText = src.HelpText
		}
		if src.Action != "" {
			dst.Action = src.Action
		}
		if src.Enabled != nil {
			dst.Enabled = src.Enabled
		}
		if src.Keys.Function != "" {
			dst.Keys.Function = src.Keys.Function
		}
		if src.Keys.Vim != "" {
			dst.Keys.Vim = src.Keys.Vim
		}
		if src.Keys.Emacs != "" {
			dst.Keys.Emacs = src.Keys.Emacs
		}
	}
	apply(override.Help, &out.Help)
	apply(override.Copy, &out.Copy)
	apply(override.Open, &out.Open)
	apply(override.View, &out.View)
	apply(override.Quit, &out.Quit)
	return out
}

func mergeThemeConfig(base, override ui.ThemeConfig) ui.ThemeConfig {
	out := base
	apply := func(src ui.ColorValue, dst *ui.ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	if strings.TrimSpace(override.BorderStyle) != "" {
		out.BorderStyle = override.BorderStyle
	}
	apply(override.TitleColor, &out.TitleColor)
	apply(override.SubtitleColor, &out.SubtitleColor)
	apply(override.BadgeFG, &out.BadgeFG)
	apply(override.BadgeBG, &out.BadgeBG)
	apply(override.HeaderFG, &out.HeaderFG)
	apply(override.HeaderBG, &out.HeaderBG)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.SelectedBG, &out.SelectedBG)
	apply(override.SeparatorColor, &out.SeparatorColor)
	apply(override.InputBG, &out.InputBG)
	apply(override.InputFG, &out.InputFG)
	apply(override.StatusColor, &out.StatusColor)
	apply(override.StatusError, &out.StatusError)
	apply(override.StatusSuccess, &out.StatusSuccess)
	apply(override.DebugColor, &out.DebugColor)
	apply(override.FooterFG, &out.FooterFG)
	apply(override.FooterBG, &out.FooterBG)
	apply(override.HelpKey, &out.HelpKey)
	apply(override.HelpValue, &out.HelpValue)
	return out
}

func applyBuildData(cfg *ui.ThemeConfigFile, buildData map[string]interface{}) {
	if v, ok := buildData["Version"].(string); ok {
		cfg.About.Version = v
	}
	if v, ok := buildData["GoVersion"].(string); ok {
		cfg.About.GoVersion = v
	}
	if v, ok := buildData["BuildOS"].(string); ok {
		cfg.About.BuildOS = v
	}
	if v, ok := buildData["BuildArch"].(string); ok {
		cfg.About.BuildArch = v
	}
	if v, ok := buildData["GitCommit"].(string); ok {
		cfg.About.GitCommit = v
	}
}

// getAllAvailableThemes collects theme names from built-in presets and the
// merged config file.
func getAllAvailableThemes(cfgFile *ui.ThemeConfigFile) []string {
	themeMap := make(map[string]bool)

	for name := range ui.GetAvailableThemes() {
		themeMap[name] = true
	}

	if cfgFile != nil {
		for name := range cfgFile.Themes {
			themeMap[name] = true
		}
	}

	themes := make([]string, 0, len(themeMap))
	for name := range themeMap {
		themes = append(themes, name)
	}
	sort.Strings(themes)
	return themes
}
