// Package filex contains file-system and file-content helpers used by the
// upload pipeline and the preview cache.
package filex

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will contain path, if any.
// It is used before opening the local SQLite database.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Extension returns the lowercased extension of name including the dot, or
// "." + the whole lowercased name when it has no dot at all.
func Extension(name string) string {
	lower := strings.ToLower(name)
	if i := strings.LastIndex(lower, "."); i >= 0 {
		return lower[i:]
	}
	return "." + lower
}

// DataURL encodes data as an RFC 2397 base64 data URL. An empty content type
// is sniffed from the bytes.
func DataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
