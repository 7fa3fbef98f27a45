// Package misc keeps program identity: name, version and build hash.
package misc

import "runtime/debug"

// set by linker: -X containcss/misc.version=... -X containcss/misc.gitHash=...
var (
	version = "dev"
	gitHash = ""
)

const appName = "containcss"

// GetAppName returns name of the program as it should appear in file names and logs.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns vcs revision program was built from, if known.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
