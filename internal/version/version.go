// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build metadata, overridden at link time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// String renders the version line printed by `kikitori version`. Builds made
// with `go install` carry no ldflags, so their module version and VCS stamp
// fill the gaps.
func String() string {
	v, commit, date := Version, Commit, Date
	if info, ok := readBuildInfo(); ok {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		vcs := vcsSettings(info)
		if commit == "none" && vcs["vcs.revision"] != "" {
			commit = shortRevision(vcs["vcs.revision"])
			if vcs["vcs.modified"] == "true" {
				commit += "-dirty"
			}
		}
		if date == "unknown" && vcs["vcs.time"] != "" {
			date = vcs["vcs.time"]
		}
	}
	return fmt.Sprintf("kikitori %s (commit=%s, date=%s, go=%s)", v, commit, date, runtime.Version())
}

func vcsSettings(info *debug.BuildInfo) map[string]string {
	out := make(map[string]string, 3)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.time", "vcs.modified":
			out[s.Key] = s.Value
		}
	}
	return out
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
