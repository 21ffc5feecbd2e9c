// Package browse is the embedding facade over the winnow TUI: hand it a
// decoded catalog document (or a ready-made item set) and it runs the same
// interactive filter the CLI does.
package browse

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/winnow/internal/ui"
	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr, and stdin, then falling back to the COLUMNS
// environment variable. If detection fails completely, returns generous
// defaults (120, 24) to avoid overly narrow output in CI or non-TTY
// environments.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// ItemsFromDocument binds the entry collection inside doc and converts it to
// a filterable item set. When collection is empty and auto-detection finds
// nothing, it returns nil items and no error, so callers get an inert
// (empty, silent) browser. An explicit collection path that fails to
// resolve returns its error.
func ItemsFromDocument(doc any, collection string, spec catalog.FieldSpec) ([]filter.Item, error) {
	cat, err := catalog.Bind(doc, catalog.BindOptions{Collection: collection})
	if err != nil {
		if errors.Is(err, catalog.ErrNoCollection) {
			return nil, nil
		}
		return nil, err
	}
	if spec.Title == "" {
		spec = catalog.DefaultFieldSpec()
	}
	return catalog.Items(cat, spec), nil
}

// Run binds the catalog inside doc and starts the interactive browser.
// Host applications can pass optional tea.ProgramOption values to control IO.
func Run(doc any, cfg Config, opts ...tea.ProgramOption) error {
	items, err := ItemsFromDocument(doc, cfg.Collection, cfg.FieldSpec)
	if err != nil {
		return err
	}
	return RunItems(items, cfg, opts...)
}

// RunItems starts the interactive browser over a ready-made item set. Use
// this when the host builds items itself instead of binding a document.
func RunItems(items []filter.Item, cfg Config, opts ...tea.ProgramOption) error {
	cfg.Apply()
	return ui.RunModel(items, runOptions(cfg), opts...)
}

// Snapshot renders one full frame of the browser and returns it as a string.
// Useful for tests and non-interactive previews; no TTY is required.
func Snapshot(doc any, cfg Config) (string, error) {
	items, err := ItemsFromDocument(doc, cfg.Collection, cfg.FieldSpec)
	if err != nil {
		return "", err
	}
	return SnapshotItems(items, cfg), nil
}

// SnapshotItems renders one frame over a ready-made item set.
func SnapshotItems(items []filter.Item, cfg Config) string {
	cfg.Apply()

	width := cfg.Width
	height := cfg.Height
	if width <= 0 || height <= 0 {
		w, h := DetectTerminalSize()
		if width <= 0 {
			width = w
		}
		if height <= 0 {
			height = h
		}
	}

	return ui.RenderModelSnapshot(items, ui.ModelSnapshotConfig{
		Width:        width,
		Height:       height,
		NoColor:      cfg.NoColor,
		StartKeys:    cfg.StartKeys,
		InitialQuery: cfg.InitialQuery,
		AppName:      strings.TrimSpace(cfg.AppName),
		SourceName:   strings.TrimSpace(cfg.SourceName),
		FieldSpec:    cfg.FieldSpec,
		View:         ui.ParseViewMode(cfg.View),
		KeyMode:      keyModeFromConfig(cfg),
		Configure:    configureModel(cfg),
	})
}

func runOptions(cfg Config) ui.RunOptions {
	return ui.RunOptions{
		AppName:       cfg.AppName,
		SourceName:    cfg.SourceName,
		FieldSpec:     cfg.FieldSpec,
		SubtitleLines: cfg.SubtitleLines,
		View:          ui.ParseViewMode(cfg.View),
		KeyMode:       keyModeFromConfig(cfg),
		NoColor:       cfg.NoColor,
		Debug:         cfg.DebugEnabled,
		DebugSink:     cfg.DebugSink,
		InitialQuery:  cfg.InitialQuery,
		StartKeys:     cfg.StartKeys,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Configure:     configureModel(cfg),
	}
}

func keyModeFromConfig(cfg Config) ui.KeyMode {
	if cfg.KeyMode != "" && ui.IsValidKeyMode(cfg.KeyMode) {
		return ui.KeyMode(cfg.KeyMode)
	}
	return ui.DefaultKeyMode
}

func configureModel(cfg Config) func(*ui.Model) {
	return func(m *ui.Model) {
		if cfg.SubtitleLines > 0 {
			m.SubtitleLines = cfg.SubtitleLines
		}
	}
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
