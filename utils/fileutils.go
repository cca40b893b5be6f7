package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// IsFileExists reports whether path exists and is not a directory. Symlinks are followed.
func IsFileExists(path string) (bool, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fileInfo.IsDir(), nil
}

// FindFileInDirAndParents looks for a file named fileName in dirPath and its parents, and returns the path of the directory where it was found.
// dirPath must be a full path.
func FindFileInDirAndParents(dirPath, fileName string) (string, error) {
	// Create a map to store all paths visited, to avoid running in circles.
	visitedPaths := make(map[string]bool)
	currDir := dirPath
	for {
		exists, err := IsFileExists(filepath.Join(currDir, fileName))
		if err != nil || exists {
			return currDir, err
		}

		visitedPaths[currDir] = true
		currDir = filepath.Dir(currDir)

		// If we already visited this directory, it means that there's a loop, and we can stop.
		if visitedPaths[currDir] {
			return "", fmt.Errorf("could not find the %s file", fileName)
		}
	}
}
