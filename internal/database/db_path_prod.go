//go:build prod

package database

import (
	"crypto/sha1"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
)

// GetDefaultDBPath returns the database path for production mode.
// In production, each project gets its own database in the user's config directory.
func GetDefaultDBPath(projectRoot string) string {
	fallback := filepath.Join(projectRoot, ".kb", "ai-docs", "history.db")

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Warning: Failed to get user config dir: %v. Using fallback.", err)
		return fallback
	}

	sum := sha1.Sum([]byte(projectRoot))
	appDir := filepath.Join(configDir, "aidocs", hex.EncodeToString(sum[:6]))

	err = os.MkdirAll(appDir, 0755)
	if err != nil {
		log.Printf("Warning: Failed to create app config dir: %v. Using fallback.", err)
		return fallback
	}

	return filepath.Join(appDir, "history.db")
}

func IsDevelopment() bool {
	return false
}
