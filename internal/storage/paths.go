// Package storage persists finished analyses so repeated runs on the same
// position can skip the search.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

const appName = "anotherchessengine"

// DataDirEnv overrides the platform data directory when set.
const DataDirEnv = "ANOTHERCHESSENGINE_HOME"

// GetDataDir returns the application data directory, creating it if needed.
// - macOS: ~/Library/Application Support/anotherchessengine/
// - Linux: $XDG_DATA_HOME/anotherchessengine/ or ~/.local/share/anotherchessengine/
// - Windows: %APPDATA%/anotherchessengine/
func GetDataDir() (string, error) {
	dataDir := os.Getenv(DataDirEnv)
	if dataDir == "" {
		base, err := platformBaseDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(base, appName)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

func platformBaseDir() (string, error) {
	var env string
	var fallback []string
	switch runtime.GOOS {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}

	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	log.Debug().Str("dir", dbDir).Msg("database-dir")
	return dbDir, nil
}
