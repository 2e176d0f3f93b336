// Package testutils provides helpers shared by package tests which operate on target programs under testdata/.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/symgen/utils"
	"github.com/stretchr/testify/require"
)

// CopyToTestDirectory copies the file at filePath (relative to the working directory of the test) into an ephemeral
// directory and returns the absolute path of the copy. This keeps any artifacts a test generates out of the source tree.
func CopyToTestDirectory(t *testing.T, filePath string) string {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	sourcePath := filepath.Join(cwd, filePath)
	require.True(t, utils.FileExists(sourcePath), "missing test file %v", sourcePath)

	targetPath := filepath.Join(t.TempDir(), "symgenTest", filepath.Base(sourcePath))
	require.NoError(t, utils.CopyFile(sourcePath, targetPath))

	targetPath, err = filepath.Abs(targetPath)
	require.NoError(t, err)
	return targetPath
}

// ExecuteInDirectory executes the given method with the working directory changed to the directory of testPath, then
// restores the working directory.
func ExecuteInDirectory(t *testing.T, testPath string, method func()) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	testPathInfo, err := os.Stat(testPath)
	require.NoError(t, err)
	testDirectory := testPath
	if !testPathInfo.IsDir() {
		testDirectory = filepath.Dir(testPath)
	}

	require.NoError(t, os.Chdir(testDirectory))

	// The working directory must be restored even if the method fails the test, or cleanup of the temporary
	// directory fails
	defer func() {
		require.NoError(t, os.Chdir(cwd))
	}()
	method()
}
