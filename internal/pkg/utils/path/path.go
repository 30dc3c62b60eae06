package path

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrPathTraversal = errors.New("path contains directory traversal")
)

// ValidateSandboxName checks a file name that will be joined under a sandbox
// area directory. Names must be plain file names: no separators, no
// traversal, no null bytes.
func ValidateSandboxName(name string) error {
	if name == "" {
		return ErrEmptyPath
	}
	if strings.Contains(name, "..") {
		return ErrPathTraversal
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrPathTraversal
	}
	return nil
}

// SanitizeFilename reduces an uploaded file name to a safe base name. Any
// directory components are dropped, null bytes are replaced, and names that
// would be hidden files get a prefix.
func SanitizeFilename(name string) string {
	clean := filepath.Base(strings.TrimSpace(name))
	clean = strings.ReplaceAll(clean, "\x00", "_")
	clean = strings.ReplaceAll(clean, " ", "_")

	if clean == "" || clean == "." || clean == ".." {
		return "file"
	}
	if strings.HasPrefix(clean, ".") {
		clean = "file_" + clean
	}
	return clean
}
