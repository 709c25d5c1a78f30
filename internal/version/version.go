// Package version carries build metadata set through ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/pagebuilder/internal/version.Version=v1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Resolved returns Version, falling back to the module version recorded by
// the Go toolchain for `go install` builds.
func Resolved() string {
	if Version != "unknown" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String formats the full version line printed by the CLI.
func String() string {
	return fmt.Sprintf("pagebuilder %s (commit %s, built %s)", Resolved(), GitCommit, BuildTime)
}
