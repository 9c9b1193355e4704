// Package misc keeps build related information.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "tmplgen"

// values may be overwritten at link time with -ldflags "-X tmplgen/misc.version=..."
var (
	version = "dev"
	githash = ""
)

var readBuildInfo = sync.OnceValue(func() map[string]string {
	settings := make(map[string]string)
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}
		if version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			settings["main.version"] = bi.Main.Version
		}
	}
	return settings
})

// GetAppName returns program name used for logs, temporary files and reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	if v, ok := readBuildInfo()["main.version"]; ok {
		return v
	}
	return version
}

// GetGitHash returns VCS revision program was built from, if known.
func GetGitHash() string {
	if githash != "" {
		return githash
	}
	if rev, ok := readBuildInfo()["vcs.revision"]; ok {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if readBuildInfo()["vcs.modified"] == "true" {
			rev += "+"
		}
		return rev
	}
	return "unknown"
}
