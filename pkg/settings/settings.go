// Package settings provides build metadata, runtime configuration, and
// context helpers used across the winnow CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "winnow"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// CatalogSettings describes where the catalog document for a run comes from.
// Exactly one of FromStdin or Path is expected to be meaningful; Path wins
// when both are set.
type CatalogSettings struct {
	FromStdin bool
	Path      string
}

// Run holds configuration settings for a single execution of the application.
// It includes options for logging, catalog sourcing, output behavior, and
// error handling.
type Run struct {
	MinLogLevel     int8
	CatalogSettings CatalogSettings
	IsQuiet         bool
	NoColor         bool
	ExitOnError     bool
}

// NewCliParams initializes and returns a pointer to a Run struct with default
// CLI parameters: logging at level 0, catalog sourced from a path argument,
// colored output, and exit-on-error enabled.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		CatalogSettings: CatalogSettings{
			FromStdin: false,
		},
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
