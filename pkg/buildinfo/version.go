// Package buildinfo identifies a simpleindex build: its release version,
// the Simple API version it understands and the User-Agent it sends to
// package indexes.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/simpleindex/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/simpleindex/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/simpleindex/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Product is the client name sent to indexes.
const Product = "simpleindex"

// UserAgent returns the User-Agent header for index requests, for example
// "simpleindex/v1.2.0 (simple-api/1.1)". Development builds append the
// commit when one is known.
func UserAgent() string {
	ua := fmt.Sprintf("%s/%s (simple-api/%s", Product, Version, simple.KnownVersion)
	if Version == "dev" && Commit != "none" {
		ua += "; " + shortCommit()
	}
	return ua + ")"
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\nsimple api: %s", Version, Commit, Date, simple.KnownVersion)
}

// Template returns the version template string for cobra.
func Template() string {
	return "{{.Name}} version {{.Version}}\n" + fmt.Sprintf("commit: %s\nbuilt: %s\nsimple api: %s\n", Commit, Date, simple.KnownVersion)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
