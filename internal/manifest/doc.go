// Package manifest implements the vendor release manifest protocol: a
// channel manifest that points at a catalog manifest, and the selection of
// downloadable payloads from the catalog's package list.
//
// Resolution is deliberately narrow. Only the first channel item's first
// payload is followed to the catalog, and only the first payload of each
// matching package is selected for download. The vendor publishes richer
// documents, but this tool consumes exactly the subset it needs.
package manifest
