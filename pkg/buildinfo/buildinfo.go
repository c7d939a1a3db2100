// Package buildinfo holds the release metadata stamped into quicklog
// binaries.
package buildinfo

import (
	goversion "go.hein.dev/go-version"
)

// Set with -ldflags, for example
// -X tableflip.dev/quicklog/pkg/buildinfo.Version=v0.3.0.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Formats accepted by Render.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render describes the build in format. Short prints the version alone.
func Render(short bool, format string) string {
	return goversion.FuncWithOutput(short, Version, Commit, Date, format)
}

// String is the one-line form used in logs, e.g. "dev (none, unknown)".
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
