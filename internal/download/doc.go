// Package download fetches selected payload archives into the download
// directory.
//
// Each payload is placed through go-update so that archives carrying a
// published sha256 are checksum-verified before they replace anything on
// disk. Fetches are independent: one failure is logged and counted, the
// remaining payloads still download.
package download
