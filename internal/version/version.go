// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time via ldflags:
//
//	-X github.com/open-cli-collective/macroed/internal/version.Version=v1.2.3
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String describes the build in one line.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
