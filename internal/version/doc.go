// Package version exposes build metadata for the updater.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds.
// Short and Full render the version string for CLI output, and UserAgent
// builds the header value the HTTP clients send to the vendor hosts.
package version
