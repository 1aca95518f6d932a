package os

import (
	"bytes"
	"fmt"
	"os"

	"github.com/creachadair/atomicfile"
)

// EnsureDir creates dir and any missing parents with the given mode.
func EnsureDir(dir string, mode os.FileMode) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err := os.MkdirAll(dir, mode)
		if err != nil {
			return fmt.Errorf("could not create directory %v: %w", dir, err)
		}
	}
	return nil
}

func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// WriteFile replaces filePath with contents atomically: readers see either
// the old file or the complete new one.
func WriteFile(filePath string, contents []byte, mode os.FileMode) error {
	if _, err := atomicfile.WriteAll(filePath, bytes.NewReader(contents), mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
