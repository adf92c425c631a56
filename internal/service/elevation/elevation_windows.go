//go:build windows

package elevation

import (
	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process token carries elevation.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
