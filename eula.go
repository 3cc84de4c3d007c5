package main

import (
	"fmt"
	"os"
	"path/filepath"
)

const eulaName = "eula.txt"

// WriteEULA records the operator's acceptance of the Minecraft EULA.
func WriteEULA(dir string) error {
	if err := os.WriteFile(filepath.Join(dir, eulaName), []byte("eula=true"), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrFileSystem, eulaName, err)
	}
	return nil
}
