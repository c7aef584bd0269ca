package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	t.Setenv(StateDirEnv, "")
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	path, err := ResolvePath("<dev_state>/html_dumps")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "html_dumps"), path)

	path, err = ResolvePath("relative/file.db")
	require.NoError(t, err)
	require.Equal(t, "relative/file.db", path)
}

func TestResolvePathStateDirOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	t.Setenv(StateDirEnv, dir)

	path, err := ResolvePath("<dev_state>/snapshots.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "snapshots.db"), path)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestIsWorkspaceRoot(t *testing.T) {
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)
	require.True(t, isWorkspaceRoot(root))
	require.False(t, isWorkspaceRoot(t.TempDir()))

	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "go.mod"), []byte("module academia-backend-fork\n"), 0600))
	require.False(t, isWorkspaceRoot(other))
}
