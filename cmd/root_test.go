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
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	ui "github.com/oakwood-commons/winnow/internal/ui"
	"github.com/oakwood-commons/winnow/pkg/catalog"
)

//nolint:gochecknoinits // test setup to initialize theme presets
func init() {
	// Populate ui.GetTheme with the embedded presets so theme tests can
	// run without going through the CLI first.
	cfg, err := loadMergedConfig("")
	if err == nil {
		_ = ui.InitializeThemes(&cfg)
	}
}

// captureOutput runs fn while capturing stdout into a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = orig
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("copy: %v", err)
	}
	_ = r.Close()
	return buf.String()
}

func resetRootCmdState() {
	interactive = false
	output = "auto"
	configOutput = "yaml"
	filterQuery = ""
	collectionPath = ""
	selectExpr = ""
	themeName = ""
	configFile = ""
	debug = false
	noColor = false
	renderSnapshot = false
	startKeys = nil
	snapshotWidth = 0
	snapshotHeight = 0
	debugMaxEvents = 200
	keyMode = ""
	titleField = ""
	subtitleField = ""
	badgeFields = nil
	secondaryFields = nil
	viewName = ""
	ui.SetMenuConfig(ui.DefaultMenuConfig())

	rootCmd.SetArgs(nil)
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
}

func runCLI(t *testing.T, args []string) string {
	t.Helper()
	resetRootCmdState()
	// Isolate from user config by pointing XDG_CONFIG_HOME to a temp dir.
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	tmpDir := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Cleanup(func() {
		if origXDG == "" {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		} else {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
		}
	})
	os.Args = args
	return captureOutput(t, func() {
		if err := Execute(); err != nil {
			t.Fatalf("Execute error: %v", err)
		}
	})
}

func sampleCatalog() string {
	return filepath.Join("..", "tests", "sample.json")
}

func TestCLI_ListPrintsTitlesInDocumentOrder(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-o", "list"})
	expected := "Apple Pie\nBanana Bread\napple tart\nCherry Cobbler\n"
	if out != expected {
		t.Fatalf("expected %q, got %q", expected, out)
	}
}

func TestCLI_AutoOutputIsListWhenPiped(t *testing.T) {
	// Stdout is a pipe under captureOutput, so -o auto must pick list.
	out := runCLI(t, []string{"winnow", sampleCatalog()})
	expected := "Apple Pie\nBanana Bread\napple tart\nCherry Cobbler\n"
	if out != expected {
		t.Fatalf("expected %q, got %q", expected, out)
	}
}

func TestCLI_FilterIsCaseAndWhitespaceInsensitive(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-f", "  ApPlE "})
	expected := "Apple Pie\napple tart\n"
	if out != expected {
		t.Fatalf("expected %q, got %q", expected, out)
	}
}

func TestCLI_FilterNoMatchesPrintsNothing(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-f", "zzz"})
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestCLI_FilterEmptyShowsAll(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-f", ""})
	expected := "Apple Pie\nBanana Bread\napple tart\nCherry Cobbler\n"
	if out != expected {
		t.Fatalf("expected %q, got %q", expected, out)
	}
}

func TestCLI_JSONOutputIsValid(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-o", "json", "-f", "apple"})
	var arr []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &arr))
	require.Len(t, arr, 2)
	require.Equal(t, "Apple Pie", arr[0]["title"])
	require.Equal(t, "apple tart", arr[1]["title"])
}

func TestCLI_YAMLOutputContainsEntries(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-o", "yaml", "-f", "banana"})
	if !strings.Contains(out, "title: Banana Bread") {
		t.Fatalf("expected yaml entry for Banana Bread, got %q", out)
	}
	if strings.Contains(out, "Apple Pie") {
		t.Fatalf("hidden entry leaked into yaml output: %q", out)
	}
}

func TestCLI_TOMLOutputWrapsItems(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-o", "toml", "-f", "cherry"})
	if !strings.Contains(out, "[[items]]") {
		t.Fatalf("expected toml items array, got %q", out)
	}
	if !strings.Contains(out, "Cherry Cobbler") {
		t.Fatalf("expected Cherry Cobbler entry, got %q", out)
	}
}

func TestCLI_CSVOutputHasSortedHeader(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-o", "csv", "-f", "apple pie"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "description,official_url,tags,title,year", lines[0])
	require.Contains(t, lines[1], "Apple Pie")
	// Array fields render as compact JSON, which needs CSV quoting.
	require.Contains(t, lines[1], `"[""dessert"",""fruit""]"`)
}

func TestCLI_TableOutputHasHeadersAndTitles(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "-o", "table", "--no-color", "--snapshot-width", "100"})
	for _, want := range []string{"TITLE", "DETAILS", "Apple Pie", "Cherry Cobbler"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output, got:\n%s", want, out)
		}
	}
}

func TestCLI_CollectionFlagBindsNestedPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested.json")
	doc := `{"data": {"works": [{"title": "Rye Sourdough"}, {"title": "Olive Focaccia"}]}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out := runCLI(t, []string{"winnow", path, "--collection", "data.works", "-o", "list"})
	require.Equal(t, "Rye Sourdough\nOlive Focaccia\n", out)
}

func TestCLI_SelectPredicateNarrowsEntries(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "--select", "_.year >= 2021", "-o", "list"})
	expected := "Banana Bread\napple tart\n"
	if out != expected {
		t.Fatalf("expected %q, got %q", expected, out)
	}
}

func TestCLI_SelectPredicateOnTags(t *testing.T) {
	out := runCLI(t, []string{"winnow", sampleCatalog(), "--select", `_.tags.exists(t, t == "bread")`, "-o", "list"})
	if out != "Banana Bread\n" {
		t.Fatalf("expected only Banana Bread, got %q", out)
	}
}

func TestCLI_NoCollectionDocPrintsNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scalar.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"note": "not a catalog"}`), 0o644))

	out := runCLI(t, []string{"winnow", path, "-o", "list", "-f", "anything"})
	if out != "" {
		t.Fatalf("expected empty output for unbound document, got %q", out)
	}
}

func TestCLI_NoInputShowsHelp(t *testing.T) {
	origIsPiped := stdinIsPiped
	stdinIsPiped = func() bool { return false }
	defer func() { stdinIsPiped = origIsPiped }()

	out := runCLI(t, []string{"winnow"})
	if !strings.Contains(out, "Usage:") || !strings.Contains(out, "winnow [file]") {
		t.Fatalf("expected help output, got %q", out)
	}
	if !strings.Contains(out, "Flags:") {
		t.Fatalf("expected Flags section in help, got %q", out)
	}
}

// ansiStripRe strips ANSI escape sequences for width measurements.
var ansiStripRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\[m`)

func TestCLI_SnapshotNoColorHasNoANSI(t *testing.T) {
	out := runCLI(t, []string{
		"winnow", sampleCatalog(),
		"--snapshot", "--no-color",
		"--snapshot-width", "60",
		"--snapshot-height", "16",
	})
	// Inverse video (\x1b[7m, \x1b[m) is allowed for the selection bar.
	cleaned := strings.ReplaceAll(out, "\x1b[7m", "")
	cleaned = strings.ReplaceAll(cleaned, "\x1b[m", "")
	if strings.Contains(cleaned, "\x1b[") {
		t.Fatalf("expected no ANSI color codes in --no-color snapshot, got:\n%s", out)
	}
	if !strings.Contains(out, "Apple Pie") {
		t.Fatalf("expected catalog titles in snapshot output, got:\n%s", out)
	}
}

func TestCLI_SnapshotRespectsWidthAndHeight(t *testing.T) {
	out := runCLI(t, []string{
		"winnow", sampleCatalog(),
		"--snapshot", "--no-color",
		"--snapshot-width", "40",
		"--snapshot-height", "12",
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, 12, len(lines))

	maxWidth := 0
	for _, line := range lines {
		cleanLine := ansiStripRe.ReplaceAllString(line, "")
		if w := runewidth.StringWidth(cleanLine); w > maxWidth {
			maxWidth = w
		}
	}
	require.LessOrEqual(t, maxWidth, 40, "snapshot lines should not exceed requested width")
}

func TestCLI_SnapshotStartKeyF1ShowsHelp(t *testing.T) {
	out := runCLI(t, []string{
		"winnow", sampleCatalog(),
		"--snapshot", "--no-color",
		"--snapshot-width", "80",
		"--snapshot-height", "24",
		"--keys", "<F1>",
	})
	// The overlay lists the navigation bindings; the footer alone does not.
	if !strings.Contains(out, "move the selection up/down") {
		t.Fatalf("expected help overlay when start keys include F1, got:\n%s", out)
	}
}

func TestCLI_SnapshotFilterNarrowsVisibleSet(t *testing.T) {
	out := runCLI(t, []string{
		"winnow", sampleCatalog(),
		"--snapshot", "--no-color",
		"--snapshot-width", "80",
		"--snapshot-height", "24",
		"-f", "pie",
	})
	if !strings.Contains(out, "Apple Pie") {
		t.Fatalf("expected Apple Pie to stay visible, got:\n%s", out)
	}
	if strings.Contains(out, "Banana Bread") {
		t.Fatalf("expected Banana Bread to be hidden for query 'pie', got:\n%s", out)
	}
	if !strings.Contains(out, "1/4") {
		t.Fatalf("expected 1/4 visible counter in status line, got:\n%s", out)
	}
}

func TestCLI_SnapshotTypedKeysFilterLive(t *testing.T) {
	out := runCLI(t, []string{
		"winnow", sampleCatalog(),
		"--snapshot", "--no-color",
		"--snapshot-width", "80",
		"--snapshot-height", "24",
		"--keys", "tart",
	})
	if !strings.Contains(out, "apple tart") {
		t.Fatalf("expected apple tart after typing 'tart', got:\n%s", out)
	}
	if strings.Contains(out, "Cherry Cobbler") {
		t.Fatalf("expected Cherry Cobbler hidden after typing 'tart', got:\n%s", out)
	}
}

func TestCLI_VersionCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"version"})
	out := captureOutput(t, func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute error: %v", err)
		}
	})
	if !strings.Contains(out, "winnow") || !strings.Contains(out, "(go ") {
		t.Fatalf("expected version output with binary name and go version, got %q", out)
	}
}

func TestCLI_RootFlagVersion(t *testing.T) {
	rootCmd.SetArgs([]string{"--version"})
	out := captureOutput(t, func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute error: %v", err)
		}
	})
	if !strings.Contains(out, "winnow") {
		t.Fatalf("expected --version output to contain winnow, got %q", out)
	}
}

func TestCLI_ConfigThemesListsPresets(t *testing.T) {
	out := runCLI(t, []string{"winnow", "config", "themes"})
	for _, name := range []string{"dark", "light", "mono"} {
		if !strings.Contains(out, " - "+name) {
			t.Fatalf("expected theme %q in themes list, got %q", name, out)
		}
	}
	if !strings.Contains(out, "default: dark") {
		t.Fatalf("expected default theme note, got %q", out)
	}
}

func TestCLI_ConfigGetRawPreservesComments(t *testing.T) {
	cfg := `# custom winnow config
app:
  about:
    name: custom-winnow
ui:
  theme:
    default: dark
`
	root := t.TempDir()
	cfgDir := filepath.Join(root, "winnow")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	origXDG := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.Setenv("XDG_CONFIG_HOME", root))
	t.Cleanup(func() {
		if origXDG == "" {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		} else {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
		}
	})

	resetRootCmdState()
	os.Args = []string{"winnow", "config", "get", "-o", "yaml", "--config", cfgPath}
	out := captureOutput(t, func() {
		if err := Execute(); err != nil {
			t.Fatalf("Execute error: %v", err)
		}
	})
	if !strings.Contains(out, "# custom winnow config") {
		t.Fatalf("expected custom comment preserved, got: %q", out)
	}
	if !strings.Contains(out, "custom-winnow") {
		t.Fatalf("expected custom name in output, got: %q", out)
	}
}

func TestCLI_ConfigGetJSONAllowsDuplicateKeys(t *testing.T) {
	dupCfg := `app:
  about:
    name: dup-winnow
ui:
  theme:
    default: dark
  themes:
    dark:
      title_color: "81"
      title_color: "82"
`
	root := t.TempDir()
	cfgDir := filepath.Join(root, "winnow")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(dupCfg), 0o644))

	origXDG := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.Setenv("XDG_CONFIG_HOME", root))
	t.Cleanup(func() {
		if origXDG == "" {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		} else {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
		}
	})

	resetRootCmdState()
	os.Args = []string{"winnow", "config", "get", "-o", "json"}
	out := captureOutput(t, func() {
		if err := Execute(); err != nil {
			t.Fatalf("Execute error: %v", err)
		}
	})
	require.NotEmpty(t, out)
	require.Contains(t, out, "dup-winnow")
	// Duplicate keys resolve last-wins rather than erroring.
	require.Contains(t, out, "82")
}

func TestTerminalDeviceNames(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in  string
		out string
	}{
		"windows": {in: "CONIN$", out: "CONOUT$"},
		"linux":   {in: "/dev/tty", out: "/dev/tty"},
		"darwin":  {in: "/dev/tty", out: "/dev/tty"},
		"freebsd": {in: "/dev/tty", out: "/dev/tty"},
	}

	for goos, expected := range tests {
		goos := goos
		expected := expected
		t.Run(goos, func(t *testing.T) {
			t.Parallel()

			in, out := terminalDeviceNames(goos)
			require.Equal(t, expected.in, in)
			require.Equal(t, expected.out, out)
		})
	}
}

func TestGetProgramOptions_PipedUsesTTYAndCleansUp(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return true }

	inFile, err := os.CreateTemp(t.TempDir(), "tty-in-*")
	require.NoError(t, err)
	outFile, err := os.CreateTemp(t.TempDir(), "tty-out-*")
	require.NoError(t, err)

	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return inFile, outFile, nil
	}

	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	opts, cleanup := getProgramOptions()
	require.NotNil(t, cleanup)
	require.GreaterOrEqual(t, len(opts), 1)

	// Cleanup should close both handles; second close should error
	cleanup()
	require.Error(t, inFile.Close())
	require.Error(t, outFile.Close())
}

func TestGetProgramOptions_NotPipedUsesDefaults(t *testing.T) {
	origIsPiped := stdinIsPiped
	origOpenTTY := openTerminalIOFn
	stdinIsPiped = func() bool { return false }
	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return nil, nil, fmt.Errorf("should not be called")
	}
	defer func() {
		stdinIsPiped = origIsPiped
		openTerminalIOFn = origOpenTTY
	}()

	opts, cleanup := getProgramOptions()
	require.NotNil(t, cleanup)
	require.Nil(t, opts)

	require.NotPanics(t, cleanup)
}

// Verify resize watcher emits WindowSizeMsg on size change when stdin is piped.
func TestWithTTYResizeWatcherSendsOnSizeChange(t *testing.T) {
	origTermGetSize := termGetSize
	origTicker := newResizeTicker
	origSend := sendWindowSize
	termCalls := atomic.Int32{}

	termGetSize = func(_ int) (int, int, error) {
		switch termCalls.Add(1) {
		case 1:
			return 80, 24, nil
		default:
			return 81, 24, nil
		}
	}

	ticks := make(chan time.Time, 2)
	newResizeTicker = func(time.Duration) resizeTicker {
		return &fakeResizeTicker{ch: ticks}
	}

	msgs := make(chan tea.WindowSizeMsg, 2)
	sendWindowSize = func(_ *tea.Program, msg tea.WindowSizeMsg) {
		msgs <- msg
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		termGetSize = origTermGetSize
		newResizeTicker = origTicker
		sendWindowSize = origSend
	}()

	_, out := makePipe(t)
	opt := withTTYResizeWatcher(ctx, out)
	var p tea.Program
	opt(&p)

	// Trigger two ticks: first sets baseline, second should emit change
	ticks <- time.Now()
	ticks <- time.Now()

	recv := func() tea.WindowSizeMsg {
		select {
		case m := <-msgs:
			return m
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timed out waiting for resize message")
			return tea.WindowSizeMsg{}
		}
	}

	first := recv()
	if first.Width != 80 || first.Height != 24 {
		t.Fatalf("unexpected first size: %+v", first)
	}
	second := recv()
	if second.Width != 81 || second.Height != 24 {
		t.Fatalf("expected width change to 81, got %+v", second)
	}
}

func TestWithTTYResizeWatcherSkipsUnchangedSize(t *testing.T) {
	origTermGetSize := termGetSize
	origTicker := newResizeTicker
	origSend := sendWindowSize
	termCalls := atomic.Int32{}

	termGetSize = func(_ int) (int, int, error) {
		switch termCalls.Add(1) {
		case 1, 2:
			return 80, 24, nil
		default:
			return 81, 24, nil
		}
	}

	ticks := make(chan time.Time, 3)
	newResizeTicker = func(time.Duration) resizeTicker {
		return &fakeResizeTicker{ch: ticks}
	}

	msgs := make(chan tea.WindowSizeMsg, 2)
	sendWindowSize = func(_ *tea.Program, msg tea.WindowSizeMsg) {
		msgs <- msg
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		termGetSize = origTermGetSize
		newResizeTicker = origTicker
		sendWindowSize = origSend
	}()

	_, out := makePipe(t)
	opt := withTTYResizeWatcher(ctx, out)
	var p tea.Program
	opt(&p)

	recv := func() tea.WindowSizeMsg {
		select {
		case m := <-msgs:
			return m
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timed out waiting for resize message")
			return tea.WindowSizeMsg{}
		}
	}

	ticks <- time.Now()
	first := recv()
	if first.Width != 80 || first.Height != 24 {
		t.Fatalf("unexpected first size: %+v", first)
	}

	ticks <- time.Now()
	select {
	case m := <-msgs:
		t.Fatalf("unexpected resize message on unchanged size: %+v", m)
	case <-time.After(150 * time.Millisecond):
	}

	ticks <- time.Now()
	second := recv()
	if second.Width != 81 || second.Height != 24 {
		t.Fatalf("expected width change to 81 after size change, got %+v", second)
	}
}

type fakeResizeTicker struct {
	ch <-chan time.Time
}

func (f *fakeResizeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeResizeTicker) Stop()               {}

func makePipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	return r, w
}

func TestResolveSnapshotSize(t *testing.T) {
	tests := []struct {
		name       string
		flagW      int
		flagH      int
		detectedW  int
		detectedH  int
		wantWidth  int
		wantHeight int
	}{
		{name: "flags win", flagW: 100, flagH: 40, detectedW: 80, detectedH: 24, wantWidth: 100, wantHeight: 40},
		{name: "detected fills missing", flagW: 0, flagH: 0, detectedW: 90, detectedH: 30, wantWidth: 90, wantHeight: 30},
		{name: "partial flag", flagW: 70, flagH: 0, detectedW: 90, detectedH: 30, wantWidth: 70, wantHeight: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveSnapshotSize(tt.flagW, tt.flagH, tt.detectedW, tt.detectedH)
			if got.Width != tt.wantWidth || got.Height != tt.wantHeight {
				t.Fatalf("resolveSnapshotSize = %dx%d, want %dx%d", got.Width, got.Height, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestSnapshotHelpVisible(t *testing.T) {
	if !snapshotHelpVisible([]string{"<F1>"}) {
		t.Error("expected <F1> to enable the help overlay")
	}
	if !snapshotHelpVisible([]string{"pie", "f1"}) {
		t.Error("expected bare f1 to enable the help overlay")
	}
	if snapshotHelpVisible([]string{"<F10>", "pie"}) {
		t.Error("expected no help overlay without F1")
	}
	if snapshotHelpVisible(nil) {
		t.Error("expected no help overlay for empty start keys")
	}
}

func TestEscapeCSVField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"has,comma", `"has,comma"`},
		{`has"quote`, `"has""quote"`},
		{"has\nnewline", "\"has\nnewline\""},
	}
	for _, tt := range tests {
		if got := escapeCSVField(tt.in); got != tt.want {
			t.Errorf("escapeCSVField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAsCSV_Objects(t *testing.T) {
	entries := []interface{}{
		map[string]interface{}{"title": "A, B", "year": 2020},
		map[string]interface{}{"title": "C", "extra": "x"},
	}
	out := formatAsCSV(entries)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "extra,title,year", lines[0])
	require.Equal(t, `,"A, B",2020`, lines[1])
	require.Equal(t, "x,C,", lines[2])
}

func TestFormatAsCSV_Scalars(t *testing.T) {
	out := formatAsCSV([]interface{}{"one", 2})
	require.Equal(t, "value\none\n2\n", out)
}

func TestFormatAsCSV_Empty(t *testing.T) {
	if out := formatAsCSV(nil); out != "" {
		t.Fatalf("expected empty string for no entries, got %q", out)
	}
}

func TestResolveOutputFormat(t *testing.T) {
	origPiped := stdoutIsPiped
	defer func() { stdoutIsPiped = origPiped }()

	stdoutIsPiped = func() bool { return true }
	if got := resolveOutputFormat("auto"); got != "list" {
		t.Errorf("auto with piped stdout = %q, want list", got)
	}
	stdoutIsPiped = func() bool { return false }
	if got := resolveOutputFormat("auto"); got != "table" {
		t.Errorf("auto with terminal stdout = %q, want table", got)
	}
	if got := resolveOutputFormat("json"); got != "json" {
		t.Errorf("explicit format should pass through, got %q", got)
	}
}

func TestEffectiveKeyModePrecedence(t *testing.T) {
	resetRootCmdState()
	vim := "vim"
	cfg := ui.ThemeConfigFile{}
	cfg.Features.KeyMode = &vim

	t.Setenv("WINNOW_KEY_MODE", "emacs")
	if got := effectiveKeyMode(cfg); got != ui.KeyModeEmacs {
		t.Errorf("env should beat config, got %q", got)
	}

	keyMode = "function"
	defer func() { keyMode = "" }()
	if got := effectiveKeyMode(cfg); got != ui.KeyModeFunction {
		t.Errorf("flag should beat env and config, got %q", got)
	}
}

func TestEffectiveKeyModeFromConfig(t *testing.T) {
	resetRootCmdState()
	t.Setenv("WINNOW_KEY_MODE", "")
	vim := "vim"
	cfg := ui.ThemeConfigFile{}
	cfg.Features.KeyMode = &vim
	if got := effectiveKeyMode(cfg); got != ui.KeyModeVim {
		t.Errorf("config key mode should apply, got %q", got)
	}
	if got := effectiveKeyMode(ui.ThemeConfigFile{}); got != ui.DefaultKeyMode {
		t.Errorf("empty config should fall back to default, got %q", got)
	}
}

// Test debug collector basic functionality
func TestDebugCollector_Record(t *testing.T) {
	dc := newDebugCollector(true, 100)
	dc.Printf("test message %d", 1)
	dc.Println("test message 2")
	dc.Append("test message 3")

	if len(dc.events) != 3 {
		t.Errorf("expected 3 events, got %d", len(dc.events))
	}
}

func TestDebugCollector_Disabled(t *testing.T) {
	dc := newDebugCollector(false, 100)
	dc.Printf("test")
	dc.Println("test")
	dc.Append("test")

	if len(dc.events) != 0 {
		t.Errorf("expected 0 events when disabled, got %d", len(dc.events))
	}
}

func TestDebugCollector_MaxEvents(t *testing.T) {
	dc := newDebugCollector(true, 5)

	for i := 0; i < 10; i++ {
		dc.Printf("event %d", i)
	}

	if len(dc.events) != 5 {
		t.Errorf("expected 5 events (max), got %d", len(dc.events))
	}
	if !strings.Contains(dc.events[0].Message, "event 5") {
		t.Errorf("expected oldest kept event to be event 5, got %q", dc.events[0].Message)
	}
}

func TestDebugCollector_Writer(t *testing.T) {
	dc := newDebugCollector(true, 100)
	w := dc.Writer()

	n, err := w.Write([]byte("test message"))
	if err != nil {
		t.Errorf("Write failed: %v", err)
	}
	if n != 12 {
		t.Errorf("expected 12 bytes written, got %d", n)
	}
	if len(dc.events) != 1 {
		t.Errorf("expected 1 event, got %d", len(dc.events))
	}
}

func TestDebugCollector_WriterDisabled(t *testing.T) {
	dc := newDebugCollector(false, 100)
	w := dc.Writer()

	n, err := w.Write([]byte("test"))
	if err != nil {
		t.Errorf("Write should not fail when disabled: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes reported, got %d", n)
	}
	if len(dc.events) != 0 {
		t.Errorf("expected 0 events when disabled, got %d", len(dc.events))
	}
}

// Test loadInputData with no args and no stdin returns errShowHelp
func TestLoadInputData_NoInputShowsHelp(t *testing.T) {
	origIsPiped := stdinIsPiped
	stdinIsPiped = func() bool { return false }
	defer func() { stdinIsPiped = origIsPiped }()

	dc := newDebugCollector(false, 100)
	_, _, err := loadInputData([]string{}, false, dc)
	if !errors.Is(err, errShowHelp) {
		t.Errorf("expected errShowHelp, got %v", err)
	}
}

// Test loadInputData with file argument
func TestLoadInputData_WithFile(t *testing.T) {
	tmpFile, err := os.CreateTemp(t.TempDir(), "test-*.json")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	testData := `{"works": [{"title": "Test Entry"}]}`
	if _, err := tmpFile.WriteString(testData); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	dc := newDebugCollector(false, 100)
	root, fromStdin, err := loadInputData([]string{tmpFile.Name()}, false, dc)
	if err != nil {
		t.Errorf("loadInputData with file failed: %v", err)
	}
	if fromStdin {
		t.Error("expected fromStdin to be false for file input")
	}
	m, ok := root.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", root)
	}
	if _, ok := m["works"]; !ok {
		t.Errorf("expected works key, got %v", m)
	}
}

// The root command exits with status 2 whenever bindCatalog returns an
// error, so a dangling explicit --collection must surface as a real error
// here rather than the silent inert run reserved for auto-detect misses.
func TestBindCatalog_DanglingExplicitCollection(t *testing.T) {
	resetRootCmdState()
	collectionPath = "no.such.path"
	defer func() { collectionPath = "" }()

	root := map[string]interface{}{
		"works": []interface{}{
			map[string]interface{}{"title": "Test Entry"},
		},
	}
	dc := newDebugCollector(false, 100)
	_, items, bound, err := bindCatalog(root, dc)
	if err == nil {
		t.Fatalf("expected error for dangling collection path, got items=%v bound=%v", items, bound)
	}
	if errors.Is(err, catalog.ErrNoCollection) {
		t.Fatalf("dangling explicit path must not degrade to the no-collection sentinel: %v", err)
	}
	if !strings.Contains(err.Error(), "no.such.path") {
		t.Fatalf("error should name the failing path, got %v", err)
	}
}

func TestBindCatalog_AutoDetectMissStaysInert(t *testing.T) {
	resetRootCmdState()
	dc := newDebugCollector(false, 100)
	_, items, bound, err := bindCatalog(map[string]interface{}{"only": "scalars"}, dc)
	if err != nil {
		t.Fatalf("auto-detect miss should not error: %v", err)
	}
	if bound || items != nil {
		t.Fatalf("expected inert run, got bound=%v items=%v", bound, items)
	}
}

func TestSourceLabel(t *testing.T) {
	if got := sourceLabel([]string{"/path/to/catalog.json"}, false); got != "catalog.json" {
		t.Errorf("expected base name, got %q", got)
	}
	if got := sourceLabel(nil, true); got != "stdin" {
		t.Errorf("expected stdin label, got %q", got)
	}
	if got := sourceLabel(nil, false); got != "" {
		t.Errorf("expected empty label, got %q", got)
	}
}

func TestSetThemeExposedForExternalUse(t *testing.T) {
	orig := ui.CurrentTheme()
	defer ui.SetTheme(orig)

	lightTheme, ok := ui.GetTheme("light")
	if !ok {
		t.Fatalf("expected light theme to exist")
	}
	ui.SetTheme(lightTheme)
	th := ui.CurrentTheme()
	if th.HeaderFG != lightTheme.HeaderFG {
		t.Fatalf("expected CurrentTheme to reflect SetTheme for external consumers")
	}
}
