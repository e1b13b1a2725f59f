package common

import "fmt"

// Version variables injected at build time via ldflags
var (
	Version = "dev"
	Build   = "unknown"
)

// GetVersion returns the semantic version string
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

// GetFullVersion returns a formatted version string with all build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s)", Version, Build)
}
