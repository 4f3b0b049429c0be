//go:build !prod

package database

import "path/filepath"

// GetDefaultDBPath returns the database path for development mode.
// In dev mode, the ledger lives next to the other AI docs artifacts of the project.
func GetDefaultDBPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".kb", "ai-docs", "history.db")
}

func IsDevelopment() bool {
	return true
}
