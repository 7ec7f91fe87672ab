package version

import "fmt"

//nolint:gochecknoglobals // Overridden with -ldflags "-X".
var (
	// Version is the release tag of the build.
	Version = "0.1.0-dev"
	// Commit is the short git SHA, "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the release tag alone.
func Short() string {
	return Version
}

// Full renders the release tag with commit and build time.
func Full() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}

// KV returns the build identity as logger key-value pairs.
func KV() []any {
	return []any{"version", Version, "commit", Commit, "build_time", BuildTime}
}
