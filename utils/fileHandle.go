package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveDocument writes body to destDir/name, creating the directory if needed
func SaveDocument(body []byte, destDir, name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid document name %q", name)
	}

	if destDir == "" {
		destDir = "."
	}
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	filePath := filepath.Join(destDir, name)
	if err := os.WriteFile(filePath, body, 0644); err != nil {
		return "", err
	}
	return filePath, nil
}
