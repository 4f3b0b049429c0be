package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// projectMarkers identify a project root, most specific first.
var projectMarkers = []string{"kb.config.json", "aidocs.yaml", "aidocs.yml", ".kb", "go.mod", ".git"}

// FindProjectRoot walks up from start to the first directory containing a
// project marker.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads root/.env without overriding variables already set. A missing
// file is not an error.
func LoadEnv(root string) error {
	envPath := filepath.Join(root, ".env")
	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
