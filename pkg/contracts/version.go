package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// DataFormatVersion names the layout of the input tables the loader expects
	DataFormatVersion = "v1"

	// APIVersion is the version of the HTTP and WebSocket payloads
	APIVersion = "v1"
)

// Set with -ldflags "-X taskdash/pkg/contracts.Version=...". GitCommit falls
// back to the VCS revision stamped by the go command.
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = ""
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	Modified   bool   `json:"modified,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	DataFormat string `json:"data_format"`
	APIVersion string `json:"api_version"`
}

// GetVersionInfo collects the ldflags values and the embedded build settings
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:    Version,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		DataFormat: DataFormatVersion,
		APIVersion: APIVersion,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.GitCommit == "" {
		info.GitCommit = "unknown"
	}
	return info
}

// String is the --version line
func (v VersionInfo) String() string {
	commit := v.GitCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if v.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit %s, built %s, %s %s)", v.Version, commit, v.BuildTime, v.GoVersion, v.Platform)
}
