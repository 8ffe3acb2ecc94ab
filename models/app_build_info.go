package models

import "fmt"

// AppBuildInfo holds the build metadata injected via -ldflags.
type AppBuildInfo struct {
	BuildVersion string `json:"build_version"`
	BuildDate    string `json:"build_date"`
	BuildCommit  string `json:"build_commit"`
}

// NewAppBuildInfo replaces empty values with "N/A".
func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		BuildVersion: orNA(version),
		BuildDate:    orNA(date),
		BuildCommit:  orNA(commit),
	}
}

// String renders the build info the way the CLI prints it.
func (b AppBuildInfo) String() string {
	return fmt.Sprintf("Build version: %s\nBuild date: %s\nBuild commit: %s", b.BuildVersion, b.BuildDate, b.BuildCommit)
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
