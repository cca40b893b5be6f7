package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFileInDirAndParents(t *testing.T) {
	const configFileName = ".packagecloud.toml"
	projectRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectRoot, configFileName), []byte("repository = \"r\""), 0600))
	projectSubDirectory := filepath.Join(projectRoot, "dir")
	require.NoError(t, os.Mkdir(projectSubDirectory, 0755))

	// Find the file in the current directory
	root, err := FindFileInDirAndParents(projectRoot, configFileName)
	assert.NoError(t, err)
	assert.Equal(t, projectRoot, root)

	// Find the file in the current directory's parent
	root, err = FindFileInDirAndParents(projectSubDirectory, configFileName)
	assert.NoError(t, err)
	assert.Equal(t, projectRoot, root)

	// Look for a file that doesn't exist
	_, err = FindFileInDirAndParents(projectRoot, "notexist")
	assert.Error(t, err)
}

func TestIsFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	exists, err := IsFileExists(file)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = IsFileExists(dir)
	assert.NoError(t, err)
	assert.False(t, exists)

	exists, err = IsFileExists(filepath.Join(dir, "missing"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestIsFileExistsFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	fileLink := filepath.Join(dir, "file-link")
	dirLink := filepath.Join(dir, "dir-link")
	if err := os.Symlink(file, fileLink); err != nil {
		t.Skip("symlinks are not supported:", err)
	}
	require.NoError(t, os.Symlink(dir, dirLink))

	exists, err := IsFileExists(fileLink)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = IsFileExists(dirLink)
	assert.NoError(t, err)
	assert.False(t, exists)
}
