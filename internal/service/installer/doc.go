// Package installer orchestrates one update run end to end.
//
// The run is a batch pipeline: resolve the vendor manifests, filter the
// catalog to the configured components, download their payloads, extract the
// archives, discover the installation root and merge the extracted trees
// into it. Each stage completes before the next begins; per-item failures
// are counted in the run report rather than aborting the batch. Only the two
// manifest fetches are fatal to the run.
package installer
