// Package version provides unified mechanisms for application version tracking, update discovery, and compatibility validation.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/network"
	"github.com/reprise-cli/reprise/where"
)

// ReleasesURL lists the published releases.
const ReleasesURL = "https://api.github.com/repos/reprise-cli/reprise/releases/latest"

var versionCacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// Latest retrieves the most recent stable application version identifier from the remote update registry.
// The answer is cached for two days.
func Latest() (version string, err error) {
	ver, expired, err := versionCacher.Get()
	if err != nil {
		return "", err
	}

	if !expired && ver != "" {
		return ver, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, status, err := network.Get(ctx, ReleasesURL, map[string]string{"Accept": "application/vnd.github+json"})
	if err != nil {
		return
	}

	if status != http.StatusOK {
		err = fmt.Errorf("releases: unexpected status %d", status)
		return
	}

	var release struct {
		TagName string `json:"tag_name"`
	}

	if err = json.Unmarshal(body, &release); err != nil {
		return
	}

	if release.TagName == "" {
		err = errors.New("empty tag name")
		return
	}

	version = strings.TrimPrefix(release.TagName, "v")
	_ = versionCacher.Set(version)
	return
}
