package ui

import (
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/winnow/pkg/catalog"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

// RunOptions configures the interactive program.
type RunOptions struct {
	AppName      string
	SourceName   string
	FieldSpec    catalog.FieldSpec
	SubtitleLines int
	View         ViewMode
	KeyMode      KeyMode
	NoColor      bool
	Debug        bool
	DebugSink    func(string) // receives buffered debug lines after exit
	InitialQuery string
	StartKeys    []string
	Width        int // 0 = auto-detect
	Height       int // 0 = auto-detect
	Configure    func(*Model)
}

// RunModel starts the Bubble Tea TUI over the given item set. Width/height
// of 0 auto-detect the terminal size. Extra ProgramOptions (e.g. custom IO)
// can be provided to mirror tea.NewProgram.
func RunModel(items []filter.Item, opts RunOptions, progOpts ...tea.ProgramOption) error {
	m := InitialModel(items)
	m.AppName = strings.TrimSpace(opts.AppName)
	m.SourceName = strings.TrimSpace(opts.SourceName)
	m.NoColor = opts.NoColor
	m.DebugMode = opts.Debug
	if opts.FieldSpec.Title != "" {
		m.FieldSpec = opts.FieldSpec
	}
	if opts.SubtitleLines > 0 {
		m.SubtitleLines = opts.SubtitleLines
	}
	if opts.View != "" {
		m.ViewMode = opts.View
	}
	if opts.KeyMode != "" {
		m.KeyMode = opts.KeyMode
	}
	if opts.Configure != nil {
		opts.Configure(&m)
	}

	if opts.Width > 0 || opts.Height > 0 {
		runW := opts.Width
		runH := opts.Height
		if runW <= 0 || runH <= 0 {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				if runW <= 0 {
					runW = w
				}
				if runH <= 0 {
					runH = h
				}
			}
		}
		if runW <= 0 {
			runW = 80
		}
		if runH <= 0 {
			runH = 24
		}
		m.ForceWindowSize = true
		m.DesiredWinWidth = runW
		m.DesiredWinHeight = runH
		m.WinWidth = runW
		m.WinHeight = runH
		progOpts = append(progOpts, tea.WithWindowSize(runW, runH))
	}

	if opts.InitialQuery != "" {
		m.FilterInput.SetValue(opts.InitialQuery)
		m.applyQuery()
	}
	if len(opts.StartKeys) > 0 {
		ApplyStartupKeys(&m, opts.StartKeys)
	}
	if containsF1(opts.StartKeys) {
		m.HelpVisible = true
	}

	m.ApplyColorScheme()
	m.applyLayout(true)
	m.syncAllComponents()

	prog := tea.NewProgram(&m, progOpts...)
	finalModel, err := prog.Run()
	if finalModel != nil {
		if fm, ok := finalModel.(*Model); ok && fm != nil {
			flushDebugEvents(fm, opts.DebugSink)
		}
	}
	return err
}

// flushDebugEvents drains the buffered debug lines into the sink (stderr in
// the CLI) once the alternate screen has been torn down.
func flushDebugEvents(m *Model, debugSink func(string)) {
	if m == nil || debugSink == nil {
		return
	}
	for _, ev := range m.DebugEvents {
		debugSink(ev.Message)
	}
}
