// Package vsix extracts downloaded payload archives into the extraction root.
//
// Each archive is a ZIP container carrying a manifest.json at its root that
// describes the install-time layout: an extensionDir naming the component's
// directory below the installation root (prefixed with a placeholder token)
// and the list of packaged files. Extraction expands the archive into a
// scratch directory, then places files according to that manifest. The
// scratch directory never outlives the archive, success or failure.
package vsix
