// Package install contains core domain types for the update pipeline.
//
// It defines Actor (who performed the run), StageCount (per-stage tallies)
// and RunReport (the full outcome of one run) with Clone helpers to avoid
// leaking internal references.
package install
