// Package version carries build information set via ldflags.
package version

import "fmt"

// These variables are set via ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns a full version string with commit and date
func GetFullVersion() string {
	if Version == "dev" {
		return "dev"
	}
	if GitCommit == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildDate)
}
