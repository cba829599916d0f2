// Package buildinfo is set at link time:
//
//	go build -ldflags "-X github.com/aalvaropc/topcontainers/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("topcontainers %s (commit=%s, date=%s)", Version, Commit, Date)
}
