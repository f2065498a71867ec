package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const devVersion = "v0.1.0-dev"

// Build-time parameters set via -ldflags
var (
	Version   = devVersion
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Full version string
func Full() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit)
}

// Info returns detailed version information
func Info() string {
	return fmt.Sprintf(
		"Chatter %s\nGo: %s\nOS/Arch: %s/%s\nBuilt: %s\nCommit: %s",
		Version,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
		BuildTime,
		GitCommit,
	)
}

// `go install` builds carry no -ldflags, so fall back to the module version
// embedded in the build info.
func init() {
	if Version != devVersion {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	mainVersion := info.Main.Version
	if mainVersion == "" || mainVersion == "(devel)" {
		return
	}
	Version = mainVersion
}
