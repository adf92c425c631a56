package version

import "fmt"

// productName identifies the updater in version strings and outbound requests.
const productName = "ssms-extension-updater"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.3.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// UserAgent returns the User-Agent header value sent with requests to the
// vendor manifest and payload hosts.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", productName, Version)
}
