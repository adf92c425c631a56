//go:build !windows

package locator

import "errors"

// errHiveUnavailable reports that this platform has no system registry.
var errHiveUnavailable = errors.New("registry is unavailable on this platform")

// unavailableHive makes the registry tier yield nothing on platforms
// without a registry, letting the chain proceed to the next tier.
type unavailableHive struct{}

// localMachineHive returns the default hive for this platform.
//
//nolint:ireturn // The hive is intentionally consumed through the interface.
func localMachineHive() Hive {
	return unavailableHive{}
}

// SubKeys implements Hive.
func (unavailableHive) SubKeys(string) ([]string, error) {
	return nil, errHiveUnavailable
}

// StringValue implements Hive.
func (unavailableHive) StringValue(string, string) (string, error) {
	return "", errHiveUnavailable
}
