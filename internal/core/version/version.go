// Package version reports build information for the relay binary
package version

import "runtime/debug"

// BuildInfo holds version information about the service build
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version,omitempty"`
}

// set with -ldflags "-X 'sharerelay/internal/core/version.version=v0.3.0' -X ...commit=abcd -X ...date=2025-09-02"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information. Commit falls back to the VCS stamp
// the Go toolchain embeds when ldflags were not used
func Info() BuildInfo {
	bi := BuildInfo{Service: "sharerelay-api", Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		bi.GoVersion = info.GoVersion
		if bi.Commit == "none" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					bi.Commit = s.Value
				}
			}
		}
	}
	return bi
}
