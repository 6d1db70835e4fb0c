// Package build holds version information stamped in at link time via
// -ldflags "-X github.com/drummonds/goconvert/internal/build.Version=...".
package build

var (
	Version = "dev"
	Commit  = "unknown"
)
