// Package version reports the build identity of the treewalk binary.
package version

import "runtime/debug"

// Build identity, overridden with -ldflags "-X" at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
	develVersion    = "(devel)"
)

// InitBinaryVersion fills in whatever ldflags left at its default from the
// module build info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVersion {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case settingRevision:
			if Commit == "none" && setting.Value != "" {
				Commit = setting.Value
			}
		case settingTime:
			if Date == "unknown" && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

// String formats the identity for the version command.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
