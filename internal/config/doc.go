// Package config defines the updater settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the release channel selection, the component
// allow-list and the working directories for one run. Every field has a
// default, so running without a settings file is supported.
package config
