// Package version provides build-time version information for centerfind.
package version

// Set at build time with -ldflags "-X circle-center/internal/version.Version=...".
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)
