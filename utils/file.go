package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SaveUpload writes uploaded PDF bytes under uploadDir with the name
// <sanitized-title>_<unix>.pdf and returns the destination path.
func SaveUpload(data []byte, title, uploadDir string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	base := strings.TrimSuffix(filepath.Base(title), filepath.Ext(title))
	if base == "" || base == "." {
		base = "document"
	}
	filename := fmt.Sprintf("%s_%d.pdf", SanitizeFileName(base), time.Now().Unix())

	destPath := filepath.Join(uploadDir, filename)
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}
	return destPath, nil
}

// SanitizeFileName replaces characters outside [A-Za-z0-9._-] with
// underscores.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}
