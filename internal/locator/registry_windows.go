//go:build windows

package locator

import (
	"golang.org/x/sys/windows/registry"
)

// machineHive reads HKEY_LOCAL_MACHINE through the windows registry API.
type machineHive struct{}

// localMachineHive returns the default hive for this platform.
//
//nolint:ireturn // The hive is intentionally consumed through the interface.
func localMachineHive() Hive {
	return machineHive{}
}

// SubKeys implements Hive.
func (machineHive) SubKeys(path string) ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = key.Close()
	}()

	return key.ReadSubKeyNames(-1)
}

// StringValue implements Hive.
func (machineHive) StringValue(path, name string) (string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = key.Close()
	}()

	value, _, err := key.GetStringValue(name)

	return value, err
}
