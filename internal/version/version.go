// Package version holds build information set with ldflags:
//
//	-X github.com/the-pink-hacker/resource-pack-packer/internal/version.Version=1.0.0
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build information for `rpp version`.
func String() string {
	return fmt.Sprintf("rpp version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
