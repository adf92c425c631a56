package vsix

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

const (
	// installRootPlaceholder is the literal token the embedded manifest uses
	// in extensionDir to stand for the installation root. The match is
	// case-sensitive; an unrecognized prefix is left untouched.
	installRootPlaceholder = "[installdir]"

	// contentsMarker is the archive folder packaged file paths are nested
	// under. It is not part of the install-time layout and is removed when
	// computing destination paths.
	contentsMarker = "Contents"

	// embeddedManifestName and embeddedCatalogName are bookkeeping files at
	// the archive root. They are never copied to the extraction target.
	embeddedManifestName = "manifest.json"
	embeddedCatalogName  = "catalog.json"
)

// errUnsafePath guards against manifest or archive paths escaping the target tree.
var errUnsafePath = errors.New("path escapes the target directory")

// FileEntry is one packaged file of the embedded manifest.
type FileEntry struct {
	// FileName is the path of the file relative to the archive root.
	FileName string `json:"fileName"`
	// Sha256 is the hex-encoded checksum of the file, when published.
	Sha256 string `json:"sha256,omitempty"`
	// Size is the file size in bytes, when published.
	Size int64 `json:"size,omitempty"`
}

// Manifest is the embedded manifest.json describing the archive layout.
type Manifest struct {
	// ID identifies the component the archive carries.
	ID string `json:"id"`
	// Version is the component version string.
	Version string `json:"version,omitempty"`
	// ExtensionDir names the component directory below the installation
	// root, prefixed with the installation-root placeholder. When empty the
	// component installs at the extraction root itself.
	ExtensionDir string `json:"extensionDir,omitempty"`
	// Files lists the packaged files.
	Files []FileEntry `json:"files"`
}

// CleanExtensionDir strips the installation-root placeholder and the one
// path separator following it, turning the manifest value into a relative
// path. Values without the placeholder are returned unchanged.
func CleanExtensionDir(dir string) string {
	rest, ok := strings.CutPrefix(dir, installRootPlaceholder)
	if !ok {
		return dir
	}

	if len(rest) > 0 && (rest[0] == '\\' || rest[0] == '/') {
		rest = rest[1:]
	}

	return rest
}

// stripContentsMarker removes the leading packaged-content folder from a
// manifest file path. Paths outside that folder are returned unchanged.
func stripContentsMarker(p string) string {
	normalized := strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "/")
	if normalized == contentsMarker {
		return ""
	}

	if rest, ok := strings.CutPrefix(normalized, contentsMarker+"/"); ok {
		return rest
	}

	return normalized
}

// securedRelativePath converts a manifest or archive path, written with
// either separator, into a filesystem-local relative path. Absolute paths
// and parent traversal are rejected so a hostile archive cannot write
// outside its target tree.
func securedRelativePath(raw string) (string, error) {
	normalized := strings.TrimPrefix(strings.ReplaceAll(raw, `\`, "/"), "/")
	if normalized == "" {
		return "", nil
	}

	cleaned := path.Clean(normalized)
	if cleaned == "." {
		return "", nil
	}

	local := filepath.FromSlash(cleaned)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%s: %w", raw, errUnsafePath)
	}

	return local, nil
}
