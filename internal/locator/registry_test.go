package locator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeHive serves registry reads from maps keyed by full key path.
type fakeHive struct {
	subKeys map[string][]string
	values  map[string]string
}

func (h *fakeHive) SubKeys(path string) ([]string, error) {
	children, ok := h.subKeys[path]
	if !ok {
		return nil, errors.New("key not found")
	}

	return children, nil
}

func (h *fakeHive) StringValue(path, name string) (string, error) {
	value, ok := h.values[path+`\`+name]
	if !ok {
		return "", errors.New("value not found")
	}

	return value, nil
}

// TestRegistryScanFindsValidatedInstall verifies that unreadable keys are
// skipped and that only a marker-validated InstallDir is accepted.
func TestRegistryScanFindsValidatedInstall(t *testing.T) {
	t.Parallel()

	productKey := `SOFTWARE\Microsoft\Microsoft SQL Server Management Studio`
	packsKey := `SOFTWARE\Microsoft\SQL Server Management Studio\ExtensionPacks`
	goodDir := filepath.Join("root", "SSMS21")
	staleDir := filepath.Join("root", "gone")

	hive := &fakeHive{
		subKeys: map[string][]string{
			productKey: {"20", "21"},
			packsKey:   {"Pack"},
		},
		values: map[string]string{
			productKey + `\20\` + installDirValue: staleDir,
			productKey + `\21\` + installDirValue: goodDir,
		},
	}

	marker := filepath.Join(goodDir, "Common7", "IDE", markerExecutable)
	strategy := &RegistryScan{
		Hive: hive,
		Exists: func(path string) bool {
			return path == marker
		},
	}

	path, err := strategy.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, goodDir, path)
}

// TestRegistryScanNothingReadable verifies an empty result when every probe
// key is missing, so the chain moves on.
func TestRegistryScanNothingReadable(t *testing.T) {
	t.Parallel()

	strategy := &RegistryScan{
		Hive:   &fakeHive{},
		Exists: func(string) bool { return false },
	}

	path, err := strategy.Locate(context.Background())
	require.NoError(t, err)
	require.Empty(t, path)
}

// TestRegistryScanSkipsUnvalidatedDirs verifies that registry entries whose
// directories lack the product executable are rejected.
func TestRegistryScanSkipsUnvalidatedDirs(t *testing.T) {
	t.Parallel()

	productKey := `SOFTWARE\Microsoft\Microsoft SQL Server Management Studio`
	hive := &fakeHive{
		subKeys: map[string][]string{
			productKey: {"21"},
		},
		values: map[string]string{
			productKey + `\21\` + installDirValue: filepath.Join("root", "uninstalled"),
		},
	}

	strategy := &RegistryScan{
		Hive:   hive,
		Exists: func(string) bool { return false },
	}

	path, err := strategy.Locate(context.Background())
	require.NoError(t, err)
	require.Empty(t, path)
}
