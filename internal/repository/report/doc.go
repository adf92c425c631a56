// Package report implements persistence for the update RunReport.
//
// The FileRepository stores and loads the last run's report as JSON on disk
// and exposes a Repository interface that the installer service depends on.
package report
