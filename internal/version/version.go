// Package version holds build metadata stamped into the postforge binary.
package version

// Overridden at build time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
//
//nolint:revive
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
