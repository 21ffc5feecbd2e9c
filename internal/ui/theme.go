package ui

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"
)

// Theme defines colors and styles used across the UI. Host apps can supply their own theme.
type Theme struct {
	TitleColor     color.Color // Card title text
	SubtitleColor  color.Color // Card subtitle and secondary text
	BadgeFG        color.Color // Badge pill text
	BadgeBG        color.Color // Badge pill background
	HeaderFG       color.Color // Panel title text (top border)
	HeaderBG       color.Color // Panel title background (top border)
	BorderStyle    string      // Border style (normal|rounded)
	SelectedFG     color.Color // Selected row foreground
	SelectedBG     color.Color // Selected row background / card marker
	SeparatorColor color.Color // Color for border lines
	InputFG        color.Color // Filter input text
	InputBG        color.Color // Filter input background
	StatusColor    color.Color // Normal status bar text
	StatusError    color.Color // Error status bar text
	StatusSuccess  color.Color // Success status bar text
	DebugColor     color.Color // Debug bar text
	FooterFG       color.Color // Footer text
	FooterBG       color.Color // Footer background
	HelpKey        color.Color // Help key labels
	HelpValue      color.Color // Help value text
}

var (
	defaultThemeOnce sync.Once
	defaultTheme     Theme
	currentTheme     Theme
)

// DefaultTheme returns the palette defined in the embedded default configuration.
// Falls back to the hard-coded palette only if the embedded config cannot be read.
func DefaultTheme() Theme {
	defaultThemeOnce.Do(func() {
		cfg, err := EmbeddedDefaultConfig()
		if err != nil {
			defaultTheme = fallbackDefaultTheme()
			return
		}

		// Populate loadedThemes from the embedded config so downstream callers see
		// consistent themes. Only when still empty, to avoid clobbering themes
		// preloaded by tests calling InitializeThemes first.
		if len(loadedThemes) == 0 {
			loadedThemes = make(map[string]Theme, len(cfg.Themes))
			base := fallbackDefaultTheme()
			for name, themeCfg := range cfg.Themes {
				loadedThemes[name] = themeFromConfigWithBase(themeCfg, base)
			}
		}

		selected := strings.TrimSpace(cfg.Theme.Default)
		if selected == "" {
			selected = "dark"
		}
		if th, ok := loadedThemes[selected]; ok {
			defaultTheme = th
			return
		}
		defaultTheme = fallbackDefaultTheme()
	})

	return defaultTheme
}

// fallbackDefaultTheme preserves the built-in palette for safety.
func fallbackDefaultTheme() Theme {
	return Theme{
		TitleColor:     lipgloss.Color("81"),  // cyan titles for contrast
		SubtitleColor:  lipgloss.Color("246"), // muted gray body text (avoid bright white)
		BadgeFG:        lipgloss.Color("81"),  // cyan badge text
		BadgeBG:        lipgloss.Color("236"), // charcoal badge background
		HeaderFG:       lipgloss.Color("81"),  // cyan panel titles
		HeaderBG:       lipgloss.Color("236"), // charcoal header background
		BorderStyle:    "rounded",             // default to rounded borders
		SelectedFG:     lipgloss.Color("250"), // muted light text on selection
		SelectedBG:     lipgloss.Color("24"),  // deep teal selection
		SeparatorColor: lipgloss.Color("238"), // subtle borders
		InputFG:        lipgloss.Color("231"), // near-white query text
		InputBG:        lipgloss.Color("236"), // match header/footer background
		StatusColor:    lipgloss.Color("81"),  // cyan status
		StatusError:    lipgloss.Color("203"), // softer red for errors
		StatusSuccess:  lipgloss.Color("114"), // mint success
		DebugColor:     lipgloss.Color("244"), // muted debug text
		FooterFG:       lipgloss.Color("244"), // muted footer text
		FooterBG:       lipgloss.Color("236"), // charcoal footer background
		HelpKey:        lipgloss.Color("81"),  // match accent
		HelpValue:      lipgloss.Color("245"), // muted gray help text
	}
}

// loadedThemes stores all available themes loaded from configuration.
// This is populated at startup by InitializeThemes() using default_config.yaml.
var loadedThemes = map[string]Theme{}

// SetTheme overrides the global theme.
func SetTheme(t Theme) {
	t.BorderStyle = normalizeBorderStyle(t.BorderStyle)
	currentTheme = t
}

// SetThemeByName sets the theme by name from loaded configuration.
// Returns an error if the theme name is not found in loaded themes.
// Themes must be initialized first via InitializeThemes() before this can be used.
func SetThemeByName(name string) error {
	if theme, ok := loadedThemes[name]; ok {
		SetTheme(theme)
		return nil
	}
	// If no themes loaded yet, return helpful error
	if len(loadedThemes) == 0 {
		return fmt.Errorf("no themes loaded; call InitializeThemes() before SetThemeByName()")
	}
	return fmt.Errorf("unknown theme %q (available: %s)", name, getAvailableThemeNames())
}

// getAvailableThemeNames returns a comma-separated list of available theme names.
func getAvailableThemeNames() string {
	if len(loadedThemes) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(loadedThemes))
	for name := range loadedThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// GetTheme returns a theme by name from loaded configuration.
// Returns the theme and true if found, or a zero Theme and false if not found.
func GetTheme(name string) (Theme, bool) {
	if theme, ok := loadedThemes[name]; ok {
		return theme, true
	}
	return Theme{}, false
}

// GetAvailableThemes returns a map of all available theme names to their Theme values.
func GetAvailableThemes() map[string]Theme {
	result := make(map[string]Theme, len(loadedThemes))
	for name, theme := range loadedThemes {
		result[name] = theme
	}
	return result
}

// CurrentTheme returns the currently configured theme.
func CurrentTheme() Theme {
	if currentTheme == (Theme{}) {
		currentTheme = DefaultTheme()
	}
	return currentTheme
}

// ColorValue stores a color token (number or name) and marshals numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: s,
		}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	// Accept both ints and strings; store the literal value.
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is a YAML-friendly theme configuration (colors accept ints or strings).
type ThemeConfig struct {
	TitleColor     ColorValue `yaml:"title_color" yamlcomment:"Card title color"`
	SubtitleColor  ColorValue `yaml:"subtitle_color" yamlcomment:"Card subtitle color"`
	BadgeFG        ColorValue `yaml:"badge_fg" yamlcomment:"Badge pill foreground"`
	BadgeBG        ColorValue `yaml:"badge_bg" yamlcomment:"Badge pill background"`
	HeaderFG       ColorValue `yaml:"header_fg" yamlcomment:"Panel title foreground"`
	HeaderBG       ColorValue `yaml:"header_bg" yamlcomment:"Panel title background"`
	BorderStyle    string     `yaml:"border_style" yamlcomment:"Border style (normal|rounded)"`
	SelectedFG     ColorValue `yaml:"selected_fg" yamlcomment:"Selected row foreground"`
	SelectedBG     ColorValue `yaml:"selected_bg" yamlcomment:"Selected row background"`
	SeparatorColor ColorValue `yaml:"separator_color" yamlcomment:"Border line color"`
	InputFG        ColorValue `yaml:"input_fg" yamlcomment:"Filter input foreground"`
	InputBG        ColorValue `yaml:"input_bg" yamlcomment:"Filter input background"`
	StatusColor    ColorValue `yaml:"status_color" yamlcomment:"Status bar color"`
	StatusError    ColorValue `yaml:"status_error" yamlcomment:"Status error color"`
	StatusSuccess  ColorValue `yaml:"status_success" yamlcomment:"Status success color"`
	DebugColor     ColorValue `yaml:"debug_color" yamlcomment:"Debug text color"`
	FooterFG       ColorValue `yaml:"footer_fg" yamlcomment:"Footer foreground"`
	FooterBG       ColorValue `yaml:"footer_bg" yamlcomment:"Footer background"`
	HelpKey        ColorValue `yaml:"help_key" yamlcomment:"Help key color"`
	HelpValue      ColorValue `yaml:"help_value" yamlcomment:"Help value color"`
}

// AboutConfig contains application metadata and information.
// Fields marked as dynamic are populated at runtime from build info.
type AboutConfig struct {
	Name        string `yaml:"name,omitempty" yamlcomment:"Application name"`
	Description string `yaml:"description,omitempty" yamlcomment:"Application description"`
	// Dynamic fields (populated at runtime, shown commented in default config)
	Version   string `yaml:"version,omitempty" yamlcomment:"Application version (dynamic: from build info)"`
	GoVersion string `yaml:"go_version,omitempty" yamlcomment:"Go version used to build (dynamic: from build info)"`
	BuildOS   string `yaml:"build_os,omitempty" yamlcomment:"Build operating system (dynamic: from build info)"`
	BuildArch string `yaml:"build_arch,omitempty" yamlcomment:"Build architecture (dynamic: from build info)"`
	GitCommit string `yaml:"git_commit,omitempty" yamlcomment:"Git commit hash (dynamic: from build info)"`
	// Static fields
	License          string   `yaml:"license,omitempty" yamlcomment:"License information"`
	RepositoryURL    string   `yaml:"repository_url,omitempty" yamlcomment:"Source code repository URL"`
	DocumentationURL string   `yaml:"documentation_url,omitempty" yamlcomment:"Documentation website URL"`
	Author           string   `yaml:"author,omitempty" yamlcomment:"Author or maintainer name"`
	Details          []string `yaml:"details,omitempty" yamlcomment:"Additional details (array of strings, supports templates)"`
}

// CLIConfig holds CLI-specific configuration.
type CLIConfig struct {
	HelpHeaderTemplate string `yaml:"help_header_template,omitempty" yamlcomment:"Template for CLI --help header (supports Go templates)"`
	HelpDescription    string `yaml:"help_description,omitempty" yamlcomment:"Description paragraph for CLI --help (supports Go templates)"`
	HelpUsage          string `yaml:"help_usage,omitempty" yamlcomment:"Usage instructions for CLI --help (supports Go templates)"`
}

// HelpMenuConfig holds the dynamically generated help menu text.
// This is populated from the menu config and keybinding descriptions,
// allowing the formatted help text to be accessed via Go templating
// (e.g., {{.config.app.help.text}}).
type HelpMenuConfig struct {
	Text string `yaml:"text,omitempty" yamlcomment:"Formatted help menu text (dynamic: generated from menu config)"`
}

// DebugConfig holds debug and logging configuration.
type DebugConfig struct {
	MaxEvents *int `yaml:"max_events,omitempty" yamlcomment:"Maximum number of debug events to keep (default: 200)"`
}

// ThemeSelectionConfig holds theme selection configuration.
type ThemeSelectionConfig struct {
	Default string `yaml:"default,omitempty" yamlcomment:"Default theme name"`
}

// FeaturesConfig holds feature flags for UI features.
type FeaturesConfig struct {
	KeyMode *string `yaml:"key_mode,omitempty" yamlcomment:"Keybinding mode: function (default), vim, or emacs"`
}

// DisplayConfig holds field mapping and layout settings for catalog rendering.
type DisplayConfig struct {
	TitleField      *string  `yaml:"title_field,omitempty" yamlcomment:"Entry field shown as the card title (default: title)"`
	SubtitleField   *string  `yaml:"subtitle_field,omitempty" yamlcomment:"Entry field shown below the title"`
	BadgeFields     []string `yaml:"badge_fields,omitempty" yamlcomment:"Entry fields rendered as inline pills (arrays expand)"`
	SecondaryFields []string `yaml:"secondary_fields,omitempty" yamlcomment:"Entry fields shown as small metadata below the subtitle"`
	SubtitleLines   *int     `yaml:"subtitle_lines,omitempty" yamlcomment:"Max lines the subtitle occupies (default: 1)"`
	View            *string  `yaml:"view,omitempty" yamlcomment:"Initial catalog view: list (default) or table"`
}

// AppConfig holds application-level configuration (not UI-specific).
type AppConfig struct {
	About AboutConfig    `yaml:"about" yamlcomment:"Application metadata and information"`
	CLI   CLIConfig      `yaml:"cli" yamlcomment:"CLI-specific configuration"`
	Debug DebugConfig    `yaml:"debug" yamlcomment:"Debug and logging settings"`
	Help  HelpMenuConfig `yaml:"help,omitempty" yamlcomment:"Help menu information (populated dynamically from menu config)"`
}

// Config holds UI-specific configuration.
type Config struct {
	Theme       ThemeSelectionConfig   `yaml:"theme" yamlcomment:"Theme selection and configuration"`
	Features    FeaturesConfig         `yaml:"features" yamlcomment:"Feature flags - enable/disable UI features"`
	Display     DisplayConfig          `yaml:"display" yamlcomment:"Field mapping and layout settings"`
	Themes      map[string]ThemeConfig `yaml:"themes" yamlcomment:"Theme definitions"`
	LegacyTheme ThemeConfig            `yaml:",inline,omitempty"` // backward compatibility for single-theme files
	Menu        MenuConfigYAML         `yaml:"menu" yamlcomment:"Action key labels/bindings"`
}

// ThemeConfigFile holds the complete configuration (app + ui).
// This is the merged form used internally after loading.
type ThemeConfigFile struct {
	// Application-level settings
	About    AboutConfig    `yaml:"about" yamlcomment:"Application metadata and information"`
	CLI      CLIConfig      `yaml:"cli" yamlcomment:"CLI-specific configuration"`
	Debug    DebugConfig    `yaml:"debug" yamlcomment:"Debug and logging settings"`
	HelpMenu HelpMenuConfig `yaml:"help_menu,omitempty" yamlcomment:"Help menu information (populated dynamically from menu config)"`
	// UI-specific settings
	Theme       ThemeSelectionConfig   `yaml:"theme" yamlcomment:"Theme selection and configuration"`
	Features    FeaturesConfig         `yaml:"features" yamlcomment:"Feature flags - enable/disable UI features"`
	Display     DisplayConfig          `yaml:"display" yamlcomment:"Field mapping and layout settings"`
	Themes      map[string]ThemeConfig `yaml:"themes" yamlcomment:"Theme definitions"`
	LegacyTheme ThemeConfig            `yaml:",inline,omitempty"` // backward compatibility for single-theme files
	Menu        MenuConfigYAML         `yaml:"menu" yamlcomment:"Action key labels/bindings"`
}

// MenuConfigYAML represents menu configuration for YAML parsing.
// Uses action-based keys (help, copy, open, view, quit) with mode-specific key bindings.
type MenuConfigYAML struct {
	Help MenuItemConfig `yaml:"help,omitempty" yamlcomment:"Help overlay action"`
	Copy MenuItemConfig `yaml:"copy,omitempty" yamlcomment:"Copy selected title action"`
	Open MenuItemConfig `yaml:"open,omitempty" yamlcomment:"Open selected URL action"`
	View MenuItemConfig `yaml:"view,omitempty" yamlcomment:"List/table view toggle action"`
	Quit MenuItemConfig `yaml:"quit,omitempty" yamlcomment:"Quit action"`
}

// MenuKeyBindings defines key bindings per mode for an action.
type MenuKeyBindings struct {
	Function string `yaml:"function,omitempty" yamlcomment:"Function key (e.g., f1, f5)"`
	Vim      string `yaml:"vim,omitempty" yamlcomment:"Vim mode key (e.g., ?, y, o)"`
	Emacs    string `yaml:"emacs,omitempty" yamlcomment:"Emacs mode key (e.g., ctrl+q, alt+w)"`
}

// MenuItemConfig describes a menu item in YAML.
type MenuItemConfig struct {
	Label    string          `yaml:"label" yamlcomment:"Display label"`
	Action   string          `yaml:"action,omitempty" yamlcomment:"Registered action name (defaults to key name)"`
	Enabled  *bool           `yaml:"enabled" yamlcomment:"Enable this keybinding"`
	Keys     MenuKeyBindings `yaml:"keys,omitempty" yamlcomment:"Mode-specific key bindings"`
	HelpText string          `yaml:"help_text" yamlcomment:"Optional help overlay description for this key"`
}

// ThemeFromConfig builds a Theme from a ThemeConfig, falling back to defaults when fields are empty.
func ThemeFromConfig(cfg ThemeConfig) Theme {
	// Use fallbackDefaultTheme as the base to avoid recursive DefaultTheme() calls
	// when ThemeFromConfig runs during DefaultTheme initialization.
	return themeFromConfigWithBase(cfg, fallbackDefaultTheme())
}

// themeFromConfigWithBase builds a Theme from a ThemeConfig using the provided base theme.
func themeFromConfigWithBase(cfg ThemeConfig, base Theme) Theme {
	th := base
	set := func(val ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.TitleColor, &th.TitleColor)
	set(cfg.SubtitleColor, &th.SubtitleColor)
	set(cfg.BadgeFG, &th.BadgeFG)
	set(cfg.BadgeBG, &th.BadgeBG)
	set(cfg.HeaderFG, &th.HeaderFG)
	set(cfg.HeaderBG, &th.HeaderBG)
	if cfg.BorderStyle != "" {
		th.BorderStyle = normalizeBorderStyle(cfg.BorderStyle)
	}
	set(cfg.SelectedFG, &th.SelectedFG)
	set(cfg.SelectedBG, &th.SelectedBG)
	set(cfg.SeparatorColor, &th.SeparatorColor)
	set(cfg.InputFG, &th.InputFG)
	set(cfg.InputBG, &th.InputBG)
	set(cfg.StatusColor, &th.StatusColor)
	set(cfg.StatusError, &th.StatusError)
	set(cfg.StatusSuccess, &th.StatusSuccess)
	set(cfg.DebugColor, &th.DebugColor)
	set(cfg.FooterFG, &th.FooterFG)
	set(cfg.FooterBG, &th.FooterBG)
	set(cfg.HelpKey, &th.HelpKey)
	set(cfg.HelpValue, &th.HelpValue)
	th.BorderStyle = normalizeBorderStyle(th.BorderStyle)
	return th
}

// colorToColorValue converts a color.Color interface to a ColorValue string.
// Best effort, since color.Color is an interface without a String() method.
func colorToColorValue(c color.Color) ColorValue {
	if c == nil {
		return ""
	}
	r, g, b, a := c.RGBA()
	if a == 0 && r == 0 && g == 0 && b == 0 {
		return ""
	}
	// RGBA returns 16-bit channels; divide by 257 to scale to 8-bit.
	r8 := r / 257
	g8 := g / 257
	b8 := b / 257
	return ColorValue(fmt.Sprintf("#%02x%02x%02x", r8, g8, b8))
}

// ThemeConfigFromTheme converts a Theme into its YAML-friendly config form.
func ThemeConfigFromTheme(th Theme) ThemeConfig {
	return ThemeConfig{
		TitleColor:     colorToColorValue(th.TitleColor),
		SubtitleColor:  colorToColorValue(th.SubtitleColor),
		BadgeFG:        colorToColorValue(th.BadgeFG),
		BadgeBG:        colorToColorValue(th.BadgeBG),
		HeaderFG:       colorToColorValue(th.HeaderFG),
		HeaderBG:       colorToColorValue(th.HeaderBG),
		BorderStyle:    th.BorderStyle,
		SelectedFG:     colorToColorValue(th.SelectedFG),
		SelectedBG:     colorToColorValue(th.SelectedBG),
		SeparatorColor: colorToColorValue(th.SeparatorColor),
		InputFG:        colorToColorValue(th.InputFG),
		InputBG:        colorToColorValue(th.InputBG),
		StatusColor:    colorToColorValue(th.StatusColor),
		StatusError:    colorToColorValue(th.StatusError),
		StatusSuccess:  colorToColorValue(th.StatusSuccess),
		DebugColor:     colorToColorValue(th.DebugColor),
		FooterFG:       colorToColorValue(th.FooterFG),
		FooterBG:       colorToColorValue(th.FooterBG),
		HelpKey:        colorToColorValue(th.HelpKey),
		HelpValue:      colorToColorValue(th.HelpValue),
	}
}

func normalizeBorderStyle(val string) string {
	v := strings.TrimSpace(strings.ToLower(val))
	switch v {
	case "", "rounded", "round":
		return "rounded"
	case "normal", "square":
		return "normal"
	default:
		return "rounded"
	}
}

func borderForStyle(style string) lipgloss.Border {
	switch normalizeBorderStyle(style) {
	case "normal":
		return lipgloss.NormalBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

func borderForTheme(th Theme) lipgloss.Border {
	return borderForStyle(th.BorderStyle)
}

// LoadThemeFile reads a YAML theme file and returns a Theme.
func LoadThemeFile(path string) (Theme, error) {
	var cfg ThemeConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Theme{}, err
	}
	return ThemeFromConfig(cfg), nil
}

// LoadThemeConfig reads a config file that can contain multiple themes and settings.
// It supports the legacy single-theme format and the themes map format.
func LoadThemeConfig(path string) (ThemeConfigFile, error) {
	var cfg ThemeConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		return ThemeConfigFile{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ThemeConfigFile{}, err
	}
	// If the themes map is empty but an inline single theme is present, lift it
	// into the map for backward compatibility.
	if len(cfg.Themes) == 0 && (cfg.LegacyTheme != ThemeConfig{}) {
		cfg.Themes = map[string]ThemeConfig{
			"default": cfg.LegacyTheme,
		}
	}
	if cfg.Theme.Default == "" {
		cfg.Theme.Default = "dark"
	}
	return cfg, nil
}

// InitializeThemes loads all themes from the provided configuration into loadedThemes.
// This is called at startup to populate themes from default_config.yaml and user
// config files. It should be called before any SetThemeByName() calls.
func InitializeThemes(cfg *ThemeConfigFile) error {
	if cfg == nil {
		return fmt.Errorf("cannot initialize themes with nil configuration")
	}

	loadedThemes = make(map[string]Theme)

	if len(cfg.Themes) == 0 {
		return fmt.Errorf("no themes found in configuration")
	}

	for name, themeCfg := range cfg.Themes {
		loadedThemes[name] = ThemeFromConfig(themeCfg)
	}

	// Ensure at least a "dark" theme exists as fallback
	if _, ok := loadedThemes["dark"]; !ok {
		loadedThemes["dark"] = DefaultTheme()
	}

	return nil
}
