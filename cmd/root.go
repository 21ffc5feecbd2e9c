package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	rdebug "runtime/debug"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/winnow/internal/ui"
	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
	"github.com/oakwood-commons/winnow/pkg/loader"
	"github.com/oakwood-commons/winnow/pkg/logger"
	"github.com/oakwood-commons/winnow/pkg/settings"
)

// errShowHelp is returned by loadInputData when no input is provided and help should be shown.
var errShowHelp = errors.New("no input provided")

func init() {
	// Custom help: prepend the configured about header; with -i, open the
	// TUI with the help overlay up instead.
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFlag := cmd.Flags().Lookup("help")
		helpRequested := (helpFlag != nil && helpFlag.Changed) || cmd.CalledAs() == "help" || cmd.Name() == "help"
		if !helpRequested {
			defaultHelp(cmd, args)
			return
		}
		// Flags may not be parsed yet when help runs, so check the raw
		// args for -i/--interactive as well.
		isInteractive := interactive
		for _, arg := range os.Args[1:] {
			if arg == "-i" || arg == "--interactive" {
				isInteractive = true
				break
			}
			if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") && strings.ContainsRune(arg[1:], 'i') {
				isInteractive = true
				break
			}
		}
		if !isInteractive {
			if val, err := cmd.Flags().GetBool("interactive"); err == nil && val {
				isInteractive = true
			}
		}
		hasInput := len(cmd.Flags().Args()) > 0 || stdinIsPiped()
		if isInteractive && hasInput {
			// Defer to the normal interactive flow but seed the help key.
			startKeys = append([]string{"<F1>"}, startKeys...)
			if cmd.Run != nil {
				cmd.Run(cmd, cmd.Flags().Args())
			}
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), helpAboutHeader())
		defaultHelp(cmd, args)
	})
}

type snapshotSize struct {
	Width          int
	Height         int
	DetectedWidth  int
	DetectedHeight int
}

func resolveSnapshotSize(flagWidth, flagHeight, detectedWidth, detectedHeight int) snapshotSize {
	width := flagWidth
	height := flagHeight
	usedDetectW := detectedWidth
	usedDetectH := detectedHeight

	if width <= 0 || height <= 0 {
		if usedDetectW <= 0 || usedDetectH <= 0 {
			if w, h := detectTerminalSize(); w > 0 || h > 0 {
				if usedDetectW <= 0 {
					usedDetectW = w
				}
				if usedDetectH <= 0 {
					usedDetectH = h
				}
			}
		}
		if width <= 0 && usedDetectW > 0 {
			width = usedDetectW
		}
		if height <= 0 && usedDetectH > 0 {
			height = usedDetectH
		}
	}

	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	return snapshotSize{
		Width:          width,
		Height:         height,
		DetectedWidth:  usedDetectW,
		DetectedHeight: usedDetectH,
	}
}

func snapshotHelpVisible(keys []string) bool {
	for _, k := range keys {
		if strings.EqualFold(k, "<f1>") || strings.EqualFold(k, "f1") {
			return true
		}
	}
	return false
}

var (
	interactive    bool
	output         string // for rootCmd (default: auto)
	configOutput   string // for configCmd (default: yaml)
	filterQuery    string
	collectionPath string
	selectExpr     string
	themeName      string
	configFile     string
	debug          bool
	noColor        bool
	renderSnapshot bool
	startKeys      []string
	snapshotWidth  int
	snapshotHeight int
	debugMaxEvents int
	keyMode        string // empty = use config, "vim"/"emacs"/"function" = override

	// Display field overrides (empty = use config)
	titleField      string
	subtitleField   string
	badgeFields     []string
	secondaryFields []string
	viewName        string
)

var (
	stdinIsPiped     = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	stdoutIsPiped    = func() bool { stat, _ := os.Stdout.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	newResizeTicker  = func(d time.Duration) resizeTicker { return realResizeTicker{Ticker: time.NewTicker(d)} }
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type realResizeTicker struct {
	*time.Ticker
}

func (t realResizeTicker) C() <-chan time.Time { return t.Ticker.C }

type debugCollector struct {
	enabled   bool
	events    []ui.DebugEvent
	maxEvents int
}

func newDebugCollector(enabled bool, maxEvents int) *debugCollector {
	if maxEvents <= 0 {
		maxEvents = 200
	}
	return &debugCollector{
		enabled:   enabled,
		maxEvents: maxEvents,
	}
}

func (d *debugCollector) Printf(format string, args ...interface{}) {
	if !d.enabled {
		return
	}
	d.record(fmt.Sprintf(format, args...))
}

func (d *debugCollector) Println(args ...interface{}) {
	if !d.enabled {
		return
	}
	d.record(fmt.Sprintln(args...))
}

// Append records a preformatted debug message without emitting it.
func (d *debugCollector) Append(msg string) {
	if !d.enabled {
		return
	}
	d.record(msg)
}

// Write implements io.Writer so components can log into the collector.
func (d *debugCollector) Write(p []byte) (int, error) {
	if !d.enabled {
		return len(p), nil
	}
	d.record(string(p))
	return len(p), nil
}

func (d *debugCollector) Writer() io.Writer {
	if !d.enabled {
		return io.Discard
	}
	return d
}

func (d *debugCollector) record(msg string) {
	msg = strings.TrimRight(msg, "\n")
	d.events = append(d.events, ui.DebugEvent{Message: msg})
	// Keep the last maxEvents to avoid unbounded growth
	if d.maxEvents > 0 && len(d.events) > d.maxEvents {
		d.events = d.events[len(d.events)-d.maxEvents:]
	}
}

var rootCtx = context.Background()

func printDebugEvents(events []ui.DebugEvent) {
	if len(events) == 0 {
		return
	}
	lgr := logger.FromContext(rootCtx)
	for i, ev := range events {
		lgr.Info(ev.Message, "debug_index", i+1)
	}
}

// loadInputData reads the catalog document from a file argument or stdin.
// It returns the parsed root and whether stdin was used.
func loadInputData(args []string, debugLog bool, dc *debugCollector) (interface{}, bool, error) {
	if len(args) > 0 {
		filePath := args[0]
		if debugLog {
			dc.Printf("DBG: Reading file: %s\n", filePath)
		}
		root, err := loader.LoadFile(filePath)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load file %s: %w", filePath, err)
		}
		return root, false, nil
	}

	if !stdinIsPiped() {
		// No file and no piped input: signal to show help.
		if debugLog {
			dc.Println("DBG: No input provided; showing help")
		}
		return nil, false, errShowHelp
	}

	if debugLog {
		dc.Println("DBG: Reading from stdin...")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(data) == 0 {
		if debugLog {
			dc.Println("DBG: No input provided; defaulting to empty object")
		}
		data = []byte("{}")
	}
	if debugLog {
		dc.Printf("DBG: Read %d bytes from stdin\n", len(data))
	}
	root, err := loader.LoadRootBytes(data)
	if err != nil {
		return nil, true, fmt.Errorf("failed to parse input: %w", err)
	}
	return root, true, nil
}

// fieldSpecFromConfig resolves the field mapping: CLI flags override the
// merged config, which overrides the built-in defaults.
func fieldSpecFromConfig(cfg ui.ThemeConfigFile) catalog.FieldSpec {
	spec := catalog.DefaultFieldSpec()
	if cfg.Display.TitleField != nil && strings.TrimSpace(*cfg.Display.TitleField) != "" {
		spec.Title = strings.TrimSpace(*cfg.Display.TitleField)
	}
	if cfg.Display.SubtitleField != nil {
		spec.Subtitle = strings.TrimSpace(*cfg.Display.SubtitleField)
	}
	if len(cfg.Display.BadgeFields) > 0 {
		spec.Badges = cfg.Display.BadgeFields
	}
	if len(cfg.Display.SecondaryFields) > 0 {
		spec.Secondary = cfg.Display.SecondaryFields
	}
	if titleField != "" {
		spec.Title = titleField
	}
	if subtitleField != "" {
		spec.Subtitle = subtitleField
	}
	if len(badgeFields) > 0 {
		spec.Badges = badgeFields
	}
	if len(secondaryFields) > 0 {
		spec.Secondary = secondaryFields
	}
	return spec
}

func effectiveKeyMode(cfg ui.ThemeConfigFile) ui.KeyMode {
	if keyMode != "" && ui.IsValidKeyMode(keyMode) {
		return ui.KeyMode(keyMode)
	}
	if envVal := os.Getenv("WINNOW_KEY_MODE"); envVal != "" && ui.IsValidKeyMode(envVal) {
		return ui.KeyMode(envVal)
	}
	if cfg.Features.KeyMode != nil && ui.IsValidKeyMode(*cfg.Features.KeyMode) {
		return ui.KeyMode(*cfg.Features.KeyMode)
	}
	return ui.DefaultKeyMode
}

func effectiveViewMode(cfg ui.ThemeConfigFile) ui.ViewMode {
	if viewName != "" {
		return ui.ParseViewMode(viewName)
	}
	if cfg.Display.View != nil {
		return ui.ParseViewMode(*cfg.Display.View)
	}
	return ui.DefaultViewMode
}

func effectiveSubtitleLines(cfg ui.ThemeConfigFile) int {
	if cfg.Display.SubtitleLines != nil && *cfg.Display.SubtitleLines > 0 {
		return *cfg.Display.SubtitleLines
	}
	return 0
}

// applyDisplayConfigToModel pushes the merged display settings onto a model.
// Used by both the interactive and snapshot paths so they stay in lockstep.
func applyDisplayConfigToModel(m *ui.Model, cfg ui.ThemeConfigFile) {
	if m == nil {
		return
	}
	m.KeyMode = effectiveKeyMode(cfg)
	if n := effectiveSubtitleLines(cfg); n > 0 {
		m.SubtitleLines = n
	}
}

// bindCatalog resolves the entry collection, applies --select, and returns
// the item set plus the bound catalog. A document with no collection yields
// an inert run: nil items, ok=false, no error.
func bindCatalog(root interface{}, dc *debugCollector) (catalog.Catalog, []filter.Item, bool, error) {
	lgr := logger.FromContext(rootCtx)

	cat, err := catalog.Bind(root, catalog.BindOptions{Collection: collectionPath})
	if err != nil {
		if errors.Is(err, catalog.ErrNoCollection) {
			lgr.V(1).Info("no collection to bind; filtering disabled",
				logger.CollectionKey, collectionPath)
			dc.Println("DBG: No collection to bind; filtering disabled")
			return catalog.Catalog{}, nil, false, nil
		}
		return catalog.Catalog{}, nil, false, err
	}
	dc.Printf("DBG: Bound collection %q with %d entries\n", cat.Collection, len(cat.Entries))

	if selectExpr != "" {
		selected, dropped, err := catalog.Select(cat.Entries, selectExpr)
		if err != nil {
			return catalog.Catalog{}, nil, false, fmt.Errorf("select expression error: %w", err)
		}
		if dropped > 0 {
			dc.Printf("DBG: Select dropped %d entries\n", dropped)
		}
		cat.Entries = selected
	}

	items := catalog.Items(cat, fieldSpecFromConfig(mergedRunConfig))
	return cat, items, true, nil
}

// mergedRunConfig holds the config resolved by the root command's Run so
// helpers invoked from it see the same merged state.
var mergedRunConfig ui.ThemeConfigFile

// sourceLabel names the catalog source for the border label.
func sourceLabel(args []string, fromStdin bool) string {
	if len(args) > 0 {
		return filepath.Base(args[0])
	}
	if fromStdin {
		return "stdin"
	}
	return ""
}

func appNameFromConfig(cfg ui.ThemeConfigFile) string {
	if name := strings.TrimSpace(cfg.About.Name); name != "" {
		return name
	}
	return settings.CliBinaryName
}

// resolveOutputFormat maps -o auto to a concrete format: a bordered table
// on a terminal, a plain title list when piped.
func resolveOutputFormat(format string) string {
	if format != "auto" {
		return format
	}
	if stdoutIsPiped() {
		return "list"
	}
	return "table"
}

// shownEntries returns the source entries of the currently visible items.
func shownEntries(shown []filter.Item) []interface{} {
	entries := make([]interface{}, len(shown))
	for i, item := range shown {
		entries[i] = item.Source
	}
	return entries
}

// printShownSet renders the visible item set in the requested format.
func printShownSet(w io.Writer, shown []filter.Item, spec catalog.FieldSpec, format, appName string) error {
	switch format {
	case "list":
		for _, item := range shown {
			fmt.Fprintln(w, item.Title)
		}
		return nil
	case "table":
		width := snapshotWidth
		if width <= 0 {
			if detected, _ := detectTerminalSize(); detected > 0 {
				width = detected
			}
		}
		fmt.Fprint(w, ui.RenderCatalogTable(shown, spec, noColor, 0, 0, width))
		return nil
	case "csv":
		fmt.Fprint(w, formatAsCSV(shownEntries(shown)))
		return nil
	case "json":
		data, err := json.MarshalIndent(shownEntries(shown), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(shownEntries(shown)); err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_ = enc.Close()
		fmt.Fprint(w, buf.String())
		return nil
	case "toml":
		// TOML has no top-level array, so wrap the entries.
		data, err := toml.Marshal(map[string]interface{}{"items": shownEntries(shown)})
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprint(w, string(data))
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use auto|list|table|csv|json|yaml|toml)", format)
	}
}

// escapeCSVField escapes a CSV field according to RFC 4180. Fields with
// commas, quotes, or line breaks are quoted; embedded quotes are doubled.
func escapeCSVField(field string) string {
	needsQuoting := strings.Contains(field, ",") ||
		strings.Contains(field, "\"") ||
		strings.Contains(field, "\n") ||
		strings.Contains(field, "\r")

	if needsQuoting {
		escaped := strings.ReplaceAll(field, `"`, `""`)
		return `"` + escaped + `"`
	}
	return field
}

// formatAsCSV converts the shown entries to CSV. Object entries use the
// union of their keys as the header row; scalar entries get a single
// "value" column.
func formatAsCSV(entries []interface{}) string {
	var buf bytes.Buffer

	writeCSVRow := func(fields []string) {
		for i, field := range fields {
			if i > 0 {
				buf.WriteString(",")
			}
			buf.WriteString(escapeCSVField(field))
		}
		buf.WriteString("\n")
	}

	if len(entries) == 0 {
		return ""
	}
	if _, ok := entries[0].(map[string]interface{}); ok {
		keySet := make(map[string]bool)
		for _, entry := range entries {
			if obj, ok := entry.(map[string]interface{}); ok {
				for k := range obj {
					keySet[k] = true
				}
			}
		}
		keys := make([]string, 0, len(keySet))
		for k := range keySet {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		writeCSVRow(keys)
		for _, entry := range entries {
			if obj, ok := entry.(map[string]interface{}); ok {
				row := make([]string, len(keys))
				for i, key := range keys {
					if v, ok := obj[key]; ok {
						row[i] = catalog.Stringify(v)
					}
				}
				writeCSVRow(row)
			}
		}
		return buf.String()
	}

	writeCSVRow([]string{"value"})
	for _, entry := range entries {
		writeCSVRow([]string{catalog.Stringify(entry)})
	}
	return buf.String()
}

func buildVersionData(cfg *ui.ThemeConfigFile) map[string]interface{} {
	info, ok := rdebug.ReadBuildInfo()

	version := settings.VersionInformation.BuildVersion
	goVersion := runtime.Version()
	buildOS := runtime.GOOS
	buildArch := runtime.GOARCH
	gitCommit := settings.VersionInformation.Commit

	if ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		} else {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					gitCommit = s.Value[:7]
					break
				}
			}
		}
		if info.GoVersion != "" {
			goVersion = info.GoVersion
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "GOOS":
				buildOS = s.Value
			case "GOARCH":
				buildArch = s.Value
			}
		}
	}

	name := settings.CliBinaryName
	if cfg != nil && cfg.About.Name != "" {
		name = cfg.About.Name
	}

	return map[string]interface{}{
		"Version":   version,
		"GoVersion": goVersion,
		"BuildOS":   buildOS,
		"BuildArch": buildArch,
		"GitCommit": gitCommit,
		"Name":      name,
	}
}

// detectTerminalSize returns the best-effort terminal width/height by probing
// stdout, stderr, and stdin, then falling back to $COLUMNS.
func detectTerminalSize() (int, int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := termGetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 0
}

const defaultFallbackTermWidth = 120

// cliVersionString builds the version string for --version and the version
// subcommand.
func cliVersionString() string {
	configPath := resolveConfigPath("")
	cfg, _ := loadMergedConfig(configPath)

	name := cfg.About.Name
	if name == "" {
		name = settings.CliBinaryName
	}
	version := cfg.About.Version
	if version == "" {
		version = settings.VersionInformation.BuildVersion
	}
	goVersion := cfg.About.GoVersion
	if goVersion == "" {
		goVersion = runtime.Version()
	}

	return fmt.Sprintf("%s %s (go %s)", name, version, goVersion)
}

// getCLIShortHelp returns the short help text from config.
func getCLIShortHelp() string {
	configPath := resolveConfigPath("")
	cfg, _ := loadMergedConfig(configPath)

	name := cfg.About.Name
	if name == "" {
		name = settings.CliBinaryName
	}
	return fmt.Sprintf("%s - interactive title filter for item catalogs", name)
}

// getCLILongHelp returns the long help text from config.
func getCLILongHelp() string {
	configPath := resolveConfigPath("")
	cfg, _ := loadMergedConfig(configPath)

	templateData := configTemplateData(cfg)

	var long strings.Builder
	helpDescription := processTemplateString(cfg.CLI.HelpDescription, templateData)
	long.WriteString(helpDescription)
	long.WriteString("\n\n")

	for _, detail := range cfg.About.Details {
		long.WriteString(processTemplateString(detail, templateData))
		long.WriteString("\n")
	}
	long.WriteString("\n")

	long.WriteString(processTemplateString(cfg.CLI.HelpUsage, templateData))
	return long.String()
}

func helpAboutHeader() string {
	configPath := resolveConfigPath("")
	cfg, _ := loadMergedConfig(configPath)

	headerTemplate := cfg.CLI.HelpHeaderTemplate
	return processTemplateString(headerTemplate, configTemplateData(cfg)) + "\n"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print winnow version",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(cliVersionString()) //nolint:forbidigo
		return nil
	},
}

// configCmd groups configuration-related subcommands similar to gh-style CLIs.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage winnow configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigView(cmd)
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runThemesList()
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runThemesList()
	},
}

// runThemesList prints the available themes from merged configuration.
func runThemesList() error {
	resolvedPath := resolveConfigPath(configFile)
	merged, _ := loadMergedConfig(resolvedPath)
	names := keys(merged.Themes)
	sort.Strings(names)
	def := merged.Theme.Default
	if def == "" {
		def = "dark"
	}
	fmt.Printf("Available themes (default: %s):\n", def) //nolint:forbidigo
	for _, name := range names {
		fmt.Printf(" - %s\n", name) //nolint:forbidigo
	}
	return nil
}

// runConfigView prints the configuration honoring --output. It prefers the
// user's config file verbatim (preserving comments) and falls back to the
// embedded default. Only the json output requires unmarshaling.
func runConfigView(_ *cobra.Command) error {
	resolved := resolveConfigPath(configFile)
	var raw []byte
	var err error
	if resolved != "" {
		raw, err = os.ReadFile(resolved)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", resolved, err)
		}
	} else {
		raw, err = loadDefaultConfigRaw()
		if err != nil {
			return fmt.Errorf("failed to read default config: %w", err)
		}
	}

	printRaw := func(data []byte) {
		if len(data) == 0 {
			fmt.Print("\n") //nolint:forbidigo
			return
		}
		if data[len(data)-1] == '\n' {
			fmt.Print(string(data)) //nolint:forbidigo
			return
		}
		fmt.Printf("%s\n", string(data)) //nolint:forbidigo
	}

	switch configOutput {
	case "yaml", "raw":
		printRaw(raw)
		return nil
	case "json":
		obj, err := decodeYAMLLenient(raw)
		if err != nil {
			return fmt.Errorf("failed to decode config for json view: %w", err)
		}
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data) + "\n") //nolint:forbidigo
		return nil
	default:
		return fmt.Errorf("invalid output for config: %s (use yaml|json|raw)", configOutput)
	}
}

// getProgramOptions handles piped stdin by reopening the terminal for
// interactive input/output. This lets Bubble Tea receive keyboard and
// resize events while the catalog itself arrives on a pipe.
// Returns tea.ProgramOption values plus a cleanup.
func getProgramOptions() ([]tea.ProgramOption, func()) {
	isPiped := stdinIsPiped()
	cleanup := func() {}

	if !isPiped {
		// Normal terminal input - use default behavior
		return nil, cleanup
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// /dev/tty not available (e.g., in some CI environments).
		// Fall back to piped stdin - arrow keys and resize won't work.
		return nil, cleanup
	}
	cleanup = func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut), withTTYResizeWatcher(ctx, ttyOut))
	}

	return opts, func() {
		cancel()
		cleanup()
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	if out == "" || out == in {
		return input, input, nil
	}

	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}

	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}

	return "/dev/tty", "/dev/tty"
}

// withTTYResizeWatcher polls terminal size and sends resize messages when
// signals are unreliable (e.g., piped stdin on Windows). Best-effort; stops
// when the context is canceled.
func withTTYResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		if ctx == nil || out == nil {
			return
		}

		go func() {
			t := newResizeTicker(250 * time.Millisecond)
			defer t.Stop()

			lastW, lastH := 0, 0
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C():
					w, h, err := termGetSize(int(out.Fd()))
					if err != nil {
						continue
					}
					if w == lastW && h == lastH {
						continue
					}
					lastW, lastH = w, h
					sendWindowSize(p, tea.WindowSizeMsg{Width: w, Height: h})
				}
			}
		}()
	}
}

var rootCmd = &cobra.Command{
	Use:     "winnow [file]",
	Short:   getCLIShortHelp(),
	Long:    getCLILongHelp(),
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logLevel := int8(0)
		if debug {
			logLevel = 1
		}
		lgr := logger.Get(logLevel)
		lgr = logger.WithValues(lgr, logger.CommandKey, cmd.Name())
		rootCtx = logger.WithLogger(context.Background(), lgr)
	},
	Run: func(cmd *cobra.Command, args []string) {
		themeFlagSet := cmd.Flags().Changed("theme")
		outputFlagSet := cmd.Flags().Changed("output")
		filterFlagSet := cmd.Flags().Changed("filter")

		dc := newDebugCollector(debug, debugMaxEvents)

		resolvedConfig := resolveConfigPath(configFile)
		cfg, err := loadConfigState(resolvedConfig, themeName, themeFlagSet, true)
		if err != nil {
			if errors.As(err, new(themeSelectionError)) {
				printThemeSelectionError(os.Stderr, err)
			} else {
				fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			}
			os.Exit(2)
		}
		mergedRunConfig = cfg

		if viewName != "" && viewName != string(ui.ViewModeList) && viewName != string(ui.ViewModeTable) {
			fmt.Fprintf(os.Stderr, "invalid view: %s (use list|table)\n", viewName)
			os.Exit(2)
		}
		if keyMode != "" && !ui.IsValidKeyMode(keyMode) {
			fmt.Fprintf(os.Stderr, "invalid keymap: %s (use function|vim|emacs)\n", keyMode)
			os.Exit(2)
		}

		if cfg.Debug.MaxEvents != nil && !cmd.Flags().Changed("debug-max-events") {
			dc.maxEvents = *cfg.Debug.MaxEvents
		}

		root, fromStdin, err := loadInputData(args, debug, dc)
		if err != nil {
			if errors.Is(err, errShowHelp) {
				_ = cmd.Help()
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		cat, items, bound, err := bindCatalog(root, dc)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		spec := fieldSpecFromConfig(cfg)
		appName := appNameFromConfig(cfg)
		source := sourceLabel(args, fromStdin)
		if bound && cat.SiteName != "" {
			appName = cat.SiteName
		}

		if renderSnapshot {
			detectedW, detectedH := detectTerminalSize()
			out := renderSnapshotOutput(cfg, items, appName, source, startKeys, filterQuery,
				noColor, snapshotWidth, snapshotHeight, detectedW, detectedH, dc)
			fmt.Print(out) //nolint:forbidigo
			if debug && len(dc.events) > 0 {
				printDebugEvents(dc.events)
			}
			return
		}

		// TTY detection decides interactive vs print: a real terminal on
		// stdout starts the TUI unless a one-shot flag forces printing.
		wantsInteractive := interactive || (!stdoutIsPiped() && !outputFlagSet && !filterFlagSet)
		if wantsInteractive {
			sink := func(msg string) {
				if debug {
					dc.Append(msg)
				}
			}
			runW, runH := 0, 0
			if cmd.Flags().Changed("snapshot-width") {
				runW = snapshotWidth
			}
			if cmd.Flags().Changed("snapshot-height") {
				runH = snapshotHeight
			}
			progOpts, cleanup := getProgramOptions()
			defer cleanup()
			err := ui.RunModel(items, ui.RunOptions{
				AppName:       appName,
				SourceName:    source,
				FieldSpec:     spec,
				SubtitleLines: effectiveSubtitleLines(cfg),
				View:          effectiveViewMode(cfg),
				KeyMode:       effectiveKeyMode(cfg),
				NoColor:       noColor,
				Debug:         debug,
				DebugSink:     sink,
				InitialQuery:  filterQuery,
				StartKeys:     startKeys,
				Width:         runW,
				Height:        runH,
				Configure: func(m *ui.Model) {
					applyDisplayConfigToModel(m, cfg)
				},
			}, progOpts...)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if debug && len(dc.events) > 0 {
				printDebugEvents(dc.events)
			}
			return
		}

		// One-shot: apply the same controller pass and print the shown set.
		ctrl := filter.NewInert()
		if bound {
			ctrl = filter.New(items)
		}
		ctrl.SetQuery(filterQuery)
		shown := ctrl.Visible()
		dc.Printf("DBG: Query %q keeps %d of %d items\n", filterQuery, len(shown), ctrl.Len())

		format := resolveOutputFormat(output)
		if err := printShownSet(os.Stdout, shown, spec, format, appName); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if debug && len(dc.events) > 0 {
			printDebugEvents(dc.events)
		}
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start interactive TUI")
	rootCmd.Flags().StringVarP(&output, "output", "o", "auto", "output format: auto|list|table|csv|json|yaml|toml")
	rootCmd.Flags().StringVarP(&filterQuery, "filter", "f", "", "apply a title query and print the shown set")
	rootCmd.Flags().StringVar(&collectionPath, "collection", "", "dot path to the entry array (default: auto-detect)")
	rootCmd.Flags().StringVar(&selectExpr, "select", "", "CEL predicate over '_' to pre-select entries, e.g. '_.year >= 2020'")
	rootCmd.Flags().StringVar(&titleField, "title-field", "", "entry field shown as the title (default from config)")
	rootCmd.Flags().StringVar(&subtitleField, "subtitle-field", "", "entry field shown under the title")
	rootCmd.Flags().StringSliceVar(&badgeFields, "badge-fields", nil, "entry fields rendered as inline pills")
	rootCmd.Flags().StringSliceVar(&secondaryFields, "secondary-fields", nil, "entry fields shown as metadata lines")
	rootCmd.Flags().StringVar(&viewName, "view", "", "initial catalog view: list or table (default from config)")
	// No static default here so help doesn't misstate it; default comes from config
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name (default from config; see 'winnow config themes')")
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to a YAML config file (themes, menu, display)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "show debug info in the status bar and dump events on exit")
	rootCmd.Flags().IntVar(&debugMaxEvents, "debug-max-events", 200, "maximum number of debug events to keep")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().BoolVar(&renderSnapshot, "snapshot", false, "render a single TUI frame and exit (dev/test); honors --snapshot-width/--snapshot-height")
	rootCmd.Flags().StringVar(&keyMode, "keymap", "", "keybinding mode: function (default), vim, or emacs")
	rootCmd.Flags().StringArrayVar(&startKeys, "keys", nil, "Simulate keys on startup. Use <Key> for special keys (e.g. <F1>, <Enter>, <Esc>). Literal text types into the filter. Example: --keys \"pie<Enter>\"")
	rootCmd.Flags().IntVar(&snapshotWidth, "snapshot-width", 0, "output width in columns (snapshot and table output)")
	rootCmd.Flags().IntVar(&snapshotHeight, "snapshot-height", 0, "output height in rows (snapshot)")
	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
	// Wire config command group
	configCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file (themes, menu, display)")
	configCmd.PersistentFlags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json|raw")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configThemesCmd)
	rootCmd.AddCommand(configCmd)
	// Keep top-level themes for muscle memory but hide it
	themesCmd.Hidden = true
	rootCmd.AddCommand(themesCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// resolveConfigPath returns the explicit configFile if set, otherwise the XDG
// path ($XDG_CONFIG_HOME/winnow/config.yaml) or ~/.config/winnow/config.yaml
// if present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, "winnow", "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", "winnow", "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

func keys(m map[string]ui.ThemeConfig) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// decodeYAMLLenient decodes YAML into a generic interface while allowing
// duplicate keys by keeping the last occurrence. Used for json rendering of
// config files so user files display even when strict unmarshaling would
// reject them.
func decodeYAMLLenient(raw []byte) (interface{}, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	return yamlNodeToInterface(doc.Content[0]), nil
}

func yamlNodeToInterface(n *yaml.Node) interface{} {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			return yamlNodeToInterface(n.Content[0])
		}
		return nil
	case yaml.MappingNode:
		m := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i < len(n.Content)-1; i += 2 {
			keyNode := n.Content[i]
			valNode := n.Content[i+1]
			key := fmt.Sprint(yamlNodeToInterface(keyNode))
			var val interface{}
			if err := valNode.Decode(&val); err != nil {
				val = yamlNodeToInterface(valNode)
			}
			m[key] = val // last one wins on duplicate keys
		}
		return m
	case yaml.SequenceNode:
		arr := make([]interface{}, 0, len(n.Content))
		for _, c := range n.Content {
			var val interface{}
			if err := c.Decode(&val); err != nil {
				val = yamlNodeToInterface(c)
			}
			arr = append(arr, val)
		}
		return arr
	case yaml.ScalarNode:
		var val interface{}
		if err := n.Decode(&val); err != nil {
			return n.Value
		}
		return val
	case yaml.AliasNode:
		if n.Alias != nil {
			return yamlNodeToInterface(n.Alias)
		}
		return nil
	default:
		return nil
	}
}
