package ui

import (
	"strings"

	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

// ModelSnapshotConfig configures a single-frame render of the TUI without a
// terminal. Snapshot mode exists so scripts and CI can verify exactly what
// the interactive screen would show for a given catalog and key sequence.
type ModelSnapshotConfig struct {
	Width        int
	Height       int
	NoColor      bool
	HelpVisible  bool
	StartKeys    []string
	InitialQuery string
	AppName      string
	SourceName   string
	FieldSpec    catalog.FieldSpec
	View         ViewMode
	KeyMode      KeyMode
	Configure    func(*Model)
}

// RenderModelSnapshot renders one frame over the given items using the same
// Model code path as the interactive program.
func RenderModelSnapshot(items []filter.Item, cfg ModelSnapshotConfig) string {
	m := InitialModel(items)
	m.NoColor = cfg.NoColor
	m.HelpVisible = cfg.HelpVisible
	m.AppName = strings.TrimSpace(cfg.AppName)
	m.SourceName = strings.TrimSpace(cfg.SourceName)
	if cfg.FieldSpec.Title != "" {
		m.FieldSpec = cfg.FieldSpec
	}
	if cfg.View != "" {
		m.ViewMode = cfg.View
	}
	if cfg.KeyMode != "" {
		m.KeyMode = cfg.KeyMode
	}
	if cfg.Width > 0 {
		m.WinWidth = cfg.Width
	} else {
		m.WinWidth = 80
	}
	if cfg.Height > 0 {
		m.WinHeight = cfg.Height
	} else {
		m.WinHeight = 24
	}
	if cfg.Configure != nil {
		cfg.Configure(&m)
	}

	if cfg.InitialQuery != "" {
		m.FilterInput.SetValue(cfg.InitialQuery)
		m.applyQuery()
	}
	if len(cfg.StartKeys) > 0 {
		ApplyStartupKeys(&m, cfg.StartKeys)
	}
	if containsF1(cfg.StartKeys) {
		m.HelpVisible = true
	}

	m.ApplyColorScheme()
	m.applyLayout(true)
	m.rebuildVisible(false)
	m.syncAllComponents()

	view := m.renderFrame()
	if cfg.NoColor {
		view = stripANSIExceptInverse(view)
	}
	if cfg.Height > 0 {
		view = padSnapshotHeight(view, cfg.Height, cfg.Width)
	}
	return view
}

// padSnapshotHeight pads a rendered frame to an exact line count so snapshot
// comparisons stay stable across content heights.
func padSnapshotHeight(view string, height, width int) string {
	if height <= 0 {
		return view
	}
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
