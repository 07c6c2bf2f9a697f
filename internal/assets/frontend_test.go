package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontend(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, Frontend(dir))
	assert.False(t, HasFrontend(dir))
	assert.Nil(t, Frontend(""))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644))
	fsys := Frontend(dir)
	require.NotNil(t, fsys)
	assert.True(t, HasFrontend(dir))

	data, err := fs.ReadFile(fsys, "index.html")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}
