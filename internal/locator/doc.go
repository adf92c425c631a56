// Package locator discovers the root directory of an existing product
// installation.
//
// Discovery is a chain of strategies tried in a fixed order: an explicit
// path override, a query against the system setup tool, a registry scan and
// a probe of well-known Program Files directories. A strategy failure only
// moves the chain to the next tier; the chain as a whole reports ErrNotFound
// when every tier is exhausted. The installation is never created by this
// package, only found.
package locator
