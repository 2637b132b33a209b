// Package version reports build metadata for the reloadctl binary.
package version

import (
	"runtime"
	"runtime/debug"
)

// Overridden with -ldflags "-X" in release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	commit, date := Commit, Date
	if commit == "none" {
		if info, ok := debug.ReadBuildInfo(); ok {
			commit, date = fromBuildSettings(info.Settings, commit, date)
		}
	}
	return "reloadctl " + Version + " (commit=" + commit + ", date=" + date + ", go=" + runtime.Version() + ")"
}

// fromBuildSettings fills commit and date from the vcs stamps the go tool embeds.
func fromBuildSettings(settings []debug.BuildSetting, commit, date string) (string, string) {
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			date = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && commit != "none" {
		commit += "-dirty"
	}
	return commit, date
}
