// Package elevation reports whether the process runs with administrative
// rights.
//
// Writing into the installation directory and reading machine-wide registry
// keys usually require elevation, so the installer checks early and warns
// instead of failing halfway through a merge.
package elevation
