// Package version holds the datagen release version.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Build information. These variables are set at build time via ldflags.
var (
	// Version is the semantic version of the tool. It is written into every
	// generated region.
	Version = "1.0.0"

	// CommitHash is the git commit hash when the binary was built.
	CommitHash = "dev"
)

// Semver returns Version parsed as a semantic version. It panics if the
// version set through ldflags is not valid semver.
func Semver() *semver.Version {
	return semver.MustParse(Version)
}

// Compatible reports whether a region stamped by version v can be
// regenerated by this build: the major versions must match, or v must be
// older.
func Compatible(v *semver.Version) bool {
	return v.Major() <= Semver().Major()
}

// String returns a human-readable version string.
func String() string {
	return fmt.Sprintf("datagen %s (commit %s, %s, %s/%s)", Version, CommitHash, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
