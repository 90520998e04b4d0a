// Package where resolves the filesystem locations used by the application.
package where

import (
	"os"
	"path/filepath"

	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "REPRISE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory. REPRISE_CONFIG_PATH takes precedence over the platform default.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Reprise))
}

// Cache resolves the cache directory, falling back to ./cache when the platform has none.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Reprise))
}

// Logs resolves the directory holding daily log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Store is the JSON file used by the gache store backend.
func Store() string {
	return filepath.Join(Config(), "store.json")
}

// Database is the sqlite file used by the sqlite store backend.
func Database() string {
	return filepath.Join(Config(), constant.Reprise+".db")
}

// Metadata resolves the directory holding cached video metadata.
func Metadata() string {
	return ensureDir(filepath.Join(Cache(), "metadata"))
}

// Temp resolves a volatile directory for IPC sockets and other transient files.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Reprise))
}
