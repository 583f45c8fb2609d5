// Package buildinfo holds the version stamped into the binary at build time.
//
//	go build -ldflags "-X github.com/matzehuels/bracketview/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/bracketview/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/bracketview/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Set via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp as reported by the API health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}

// UserAgent is sent with every upstream request.
func UserAgent() string {
	return "bracketview/" + Version + " (+https://github.com/matzehuels/bracketview)"
}
