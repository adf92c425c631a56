package manifest

// targetArchitecture is the only platform the vendor ships these components for.
const targetArchitecture = "x64"

// DownloadTarget pairs a catalog package with the payload selected for it.
type DownloadTarget struct {
	// PackageID is the identifier of the package the payload belongs to.
	PackageID string
	// Payload is the first payload of the package.
	Payload Payload
}

// FileName returns the local filename the target is downloaded to.
func (t *DownloadTarget) FileName() string {
	return t.Payload.TargetFileName(t.PackageID)
}

// IsPlatformCompatible reports whether the package can be installed on an
// x64 host. Exactly three shapes are admitted: an exact x64 match on both
// attributes, an x64 product with no machine requirement, and a fully
// architecture-neutral package. Anything carrying a foreign architecture on
// either attribute fails all three clauses.
func IsPlatformCompatible(p *Package) bool {
	switch {
	case p.ProductArch == targetArchitecture && p.MachineArch == targetArchitecture:
		return true
	case p.ProductArch == targetArchitecture && p.MachineArch == "":
		return true
	case p.ProductArch == "" && p.MachineArch == "":
		return true
	default:
		return false
	}
}

// SelectDownloadTargets walks the catalog in manifest order and keeps the
// packages that are platform-compatible and whose id is in the allow-list.
// Only the first payload of each kept package is selected even when several
// are listed. An empty result is not an error; the caller reports it.
func SelectDownloadTargets(catalog *CatalogManifest, allowList []string) []DownloadTarget {
	allowed := sliceToSet(allowList)
	targets := make([]DownloadTarget, 0, len(allowList))

	for i := range catalog.Packages {
		pkg := &catalog.Packages[i]
		if !IsPlatformCompatible(pkg) {
			continue
		}

		if _, ok := allowed[pkg.ID]; !ok {
			continue
		}

		// A listed package without payloads has nothing to download.
		if len(pkg.Payloads) == 0 {
			continue
		}

		targets = append(targets, DownloadTarget{
			PackageID: pkg.ID,
			Payload:   pkg.Payloads[0],
		})
	}

	return targets
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
