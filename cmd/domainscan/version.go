package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Injected through -ldflags on release builds. When empty, the values
// fall back to whatever the embedded build info carries.
var (
	version = ""
	commit  = ""
	date    = ""
)

const shortHashLen = 7

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of domainscan.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "domainscan version %s\n", getVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
		},
	}
}

// getVersion resolves the release version. Source builds without
// ldflags report the module version, or "(devel)" for a plain checkout.
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit resolves the VCS revision, shortened to the usual seven
// characters when it comes from the embedded build info.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev := vcsSetting("vcs.revision"); rev != "" {
		if len(rev) > shortHashLen {
			return rev[:shortHashLen]
		}
		return rev
	}
	return "unknown"
}

// getDate resolves the commit timestamp recorded by the VCS.
func getDate() string {
	if date != "" {
		return date
	}
	if ts := vcsSetting("vcs.time"); ts != "" {
		return ts
	}
	return "unknown"
}

// vcsSetting reads one key from the build info settings.
func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
