// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/docindex/internal/version.Version=v1.2.0"
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for `docindex version`.
func String() string {
	return Version + " (commit " + Commit + ", built " + Date + ")"
}
