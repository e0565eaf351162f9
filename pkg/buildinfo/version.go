// Package buildinfo exposes the version stamped into the genomap binary.
//
// The variables are set with ldflags at release time:
//
//	go build -ldflags "-X github.com/matzehuels/genomap/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/genomap/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/genomap
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the abbreviated git commit.
	Commit = "none"

	// Date is the UTC build time in RFC 3339.
	Date = "unknown"
)

// Info is the build information reported by the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies API clients.
func UserAgent() string {
	return "genomap/" + Version
}
