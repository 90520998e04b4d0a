// Package cache keeps fetched metadata on disk for a limited time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/where"
	"github.com/spf13/afero"
)

// TTL is how long an entry stays valid.
const TTL = 7 * 24 * time.Hour

// GenerateKey derives a file name from a query and the namespace it belongs to.
func GenerateKey(query, namespace string) string {
	sanitized := strings.ToLower(strings.ReplaceAll(query, " ", "")) + namespace
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read decodes a fresh entry into target. Missing, expired or corrupt entries report false.
func Read(key string, target any) bool {
	path := filepath.Join(where.Metadata(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	data, err := afero.ReadFile(filesystem.API(), path)
	if err != nil {
		return false
	}

	return json.Unmarshal(data, target) == nil
}

// Write stores data under key, replacing the previous entry atomically.
func Write(key string, data any) error {
	path := filepath.Join(where.Metadata(), key)
	tmpPath := path + ".tmp"

	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := afero.WriteFile(filesystem.API(), tmpPath, encoded, os.ModePerm); err != nil {
		return err
	}

	return filesystem.API().Rename(tmpPath, path)
}

// CollectGarbage removes expired entries in the background.
func CollectGarbage() {
	go func() {
		_ = afero.Walk(filesystem.API(), where.Metadata(), func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}

			if time.Since(info.ModTime()) > TTL {
				_ = filesystem.API().Remove(path)
			}
			return nil
		})
	}()
}
