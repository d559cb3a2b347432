package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/serverwrap/pkg/filesystem"
	"github.com/arthur-debert/serverwrap/pkg/types"
)

// NewTestFS creates an in-memory filesystem. MemMapFs renames only move
// single files, so directory swaps are tested on the OS filesystem.
func NewTestFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}

// WriteFiles creates each path with its content, making parent directories.
func WriteFiles(t *testing.T, fsys types.FS, files map[string]string) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
}
