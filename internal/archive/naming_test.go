package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))
}

func TestUniqueName_FreeBase_ReturnsBaseZip(t *testing.T) {
	dir := t.TempDir()

	name, err := UniqueName(dir, "TerrainRadar")
	require.NoError(t, err)

	require.Equal(t, "TerrainRadar.zip", name)
}

func TestUniqueName_Collisions_AppendSuffixSequence(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "TerrainRadar.zip"))

	name, err := UniqueName(dir, "TerrainRadar")
	require.NoError(t, err)
	require.Equal(t, "TerrainRadar_1.zip", name)

	touch(t, filepath.Join(dir, "TerrainRadar_1.zip"))
	touch(t, filepath.Join(dir, "TerrainRadar_2.zip"))

	name, err = UniqueName(dir, "TerrainRadar")
	require.NoError(t, err)
	require.Equal(t, "TerrainRadar_3.zip", name)
}

func TestUniqueName_IgnoresOtherBases(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "OtherPlugin.zip"))

	name, err := UniqueName(dir, "TerrainRadar")
	require.NoError(t, err)

	require.Equal(t, "TerrainRadar.zip", name)
}
