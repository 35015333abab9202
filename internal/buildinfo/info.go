// Package buildinfo holds release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/cleared-dev/hearth/internal/buildinfo.Version=v0.3.0"
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
