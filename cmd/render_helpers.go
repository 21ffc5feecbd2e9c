package cmd

import (
	ui "github.com/oakwood-commons/winnow/internal/ui"
	"github.com/oakwood-commons/winnow/pkg/filter"
)

// renderSnapshotOutput centralizes snapshot sizing and model configuration
// so the snapshot path stays in lockstep with the interactive one.
func renderSnapshotOutput(cfg ui.ThemeConfigFile, items []filter.Item, appName, sourceName string, startKeys []string, initialQuery string, noColor bool, widthFlag, heightFlag, detectedW, detectedH int, dc *debugCollector) string {
	sizing := resolveSnapshotSize(widthFlag, heightFlag, detectedW, detectedH)
	if dc != nil {
		dc.Printf("DBG: Snapshot size resolved: width=%d height=%d (flag width=%d height=%d, detected width=%d height=%d)\n",
			sizing.Width, sizing.Height, widthFlag, heightFlag, sizing.DetectedWidth, sizing.DetectedHeight)
	}

	return ui.RenderModelSnapshot(items, ui.ModelSnapshotConfig{
		Width:        sizing.Width,
		Height:       sizing.Height,
		NoColor:      noColor,
		HelpVisible:  snapshotHelpVisible(startKeys),
		StartKeys:    startKeys,
		InitialQuery: initialQuery,
		AppName:      appName,
		SourceName:   sourceName,
		FieldSpec:    fieldSpecFromConfig(cfg),
		View:         effectiveViewMode(cfg),
		KeyMode:      effectiveKeyMode(cfg),
		Configure: func(m *ui.Model) {
			applyDisplayConfigToModel(m, cfg)
		},
	})
}
