package services

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FilePermissionsUtil confines generated writes to the project root.
type FilePermissionsUtil struct {
	Root string
}

// CheckWritePermissions reports whether target, relative to the root or
// absolute, resolves inside the root and outside the .git directory.
func (f FilePermissionsUtil) CheckWritePermissions(target string) (bool, error) {
	if strings.TrimSpace(target) == "" {
		return false, fmt.Errorf("target path is empty")
	}
	root, err := filepath.Abs(f.Root)
	if err != nil {
		return false, err
	}
	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(root, filepath.FromSlash(target))
	}
	rel, err := filepath.Rel(root, filepath.Clean(resolved))
	if err != nil {
		return false, nil
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") || rel == "." {
		return false, nil
	}
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return false, nil
	}
	return true, nil
}
