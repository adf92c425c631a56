// Package common holds helpers shared by several services.
//
// It provides utilities to detect the current system actor
// (hostname/username) for the run report's audit trail.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
