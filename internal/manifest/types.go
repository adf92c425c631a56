package manifest

// Payload references one downloadable archive.
type Payload struct {
	// URL is where the payload is fetched from.
	URL string `json:"url"`
	// Sha256 is the hex-encoded checksum of the payload, when published.
	Sha256 string `json:"sha256,omitempty"`
	// FileName is the name the payload should be stored under, when published.
	FileName string `json:"fileName,omitempty"`
	// Size is the payload size in bytes, when published.
	Size int64 `json:"size,omitempty"`
}

// TargetFileName returns the local filename the payload is stored under:
// the published fileName when present, otherwise "{packageID}_{sha256}.vsix".
func (p *Payload) TargetFileName(packageID string) string {
	if p.FileName != "" {
		return p.FileName
	}

	return packageID + "_" + p.Sha256 + ".vsix"
}

// ChannelItem is one entry of the channel manifest.
type ChannelItem struct {
	// ID identifies the item.
	ID string `json:"id"`
	// Version is the item version string.
	Version string `json:"version,omitempty"`
	// Type is the vendor item type.
	Type string `json:"type,omitempty"`
	// Payloads lists the item's downloadable documents.
	Payloads []Payload `json:"payloads,omitempty"`
}

// ChannelManifest is the top-level release channel document.
type ChannelManifest struct {
	// ManifestVersion is the schema version of the document.
	ManifestVersion string `json:"manifestVersion,omitempty"`
	// ChannelItems lists the channel entries in publication order.
	ChannelItems []ChannelItem `json:"channelItems"`
}

// Package is one installable component of the catalog manifest.
type Package struct {
	// ID identifies the package and is matched against the allow-list.
	ID string `json:"id"`
	// Version is the package version string.
	Version string `json:"version,omitempty"`
	// Type is the vendor package type.
	Type string `json:"type,omitempty"`
	// ProductArch is the architecture the package was built for, empty when neutral.
	ProductArch string `json:"productArch,omitempty"`
	// MachineArch is the host architecture the package requires, empty when neutral.
	MachineArch string `json:"machineArch,omitempty"`
	// Payloads lists the package's downloadable archives.
	Payloads []Payload `json:"payloads,omitempty"`
}

// CatalogManifest enumerates the installable packages of a release.
type CatalogManifest struct {
	// ManifestVersion is the schema version of the document.
	ManifestVersion string `json:"manifestVersion,omitempty"`
	// Packages lists the catalog entries in publication order.
	Packages []Package `json:"packages"`
}
