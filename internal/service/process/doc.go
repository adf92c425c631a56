// Package process stops conflicting processes before the update pipeline runs.
//
// Merging into a live installation fails on files the product holds open, so
// the installer asks this package to terminate the product's executables
// first. Everything here is best effort: a process that cannot be killed is
// logged and skipped, never fatal.
package process
