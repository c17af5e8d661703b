// Package version identifies an arductl build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Set with -ldflags "-X github.com/openlightcontrol/arductl/internal/version.Version=v0.3.0".
// Unset values come from the module's VCS stamp.
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version != "" && Commit != "" {
		return
	}
	var settings []debug.BuildSetting
	if info, ok := debug.ReadBuildInfo(); ok {
		settings = info.Settings
	}
	v, c := fromVCS(settings)
	if Version == "" {
		Version = v
	}
	if Commit == "" {
		Commit = c
	}
}

// fromVCS derives "dev-YYYYMMDD" and a short, dirty-marked revision from
// the vcs.* build settings
func fromVCS(settings []debug.BuildSetting) (version, commit string) {
	version, commit = "dev", "unknown"
	vcs := make(map[string]string)
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}

	if rev := vcs["vcs.revision"]; rev != "" {
		commit = rev[:min(len(rev), 7)]
		if vcs["vcs.modified"] == "true" {
			commit += "-dirty"
		}
	}
	// vcs.time is RFC 3339; the date is its first 10 bytes
	if t := vcs["vcs.time"]; len(t) >= 10 {
		version = "dev-" + t[0:4] + t[5:7] + t[8:10]
	}
	return version, commit
}

// Banner is the line printed by "version" and logged at server start
func Banner(program string) string {
	return fmt.Sprintf("%s %s (commit: %s) %s/%s (firmware %s v%d-v%d)",
		program, Version, Commit, runtime.GOOS, runtime.GOARCH,
		protocol.FirmwareID, protocol.MinVersion, protocol.MaxVersion)
}
