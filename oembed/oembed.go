// Package oembed looks up video titles through YouTube's oEmbed endpoint.
package oembed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/reprise-cli/reprise/internal/cache"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/network"
)

// Endpoint is the oEmbed URL queried for titles.
const Endpoint = "https://www.youtube.com/oembed"

// ErrNotFound is returned when YouTube has no metadata for a video.
var ErrNotFound = errors.New("video metadata not found")

// Metadata is the subset of the oEmbed response that is used.
type Metadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Fetcher performs the HTTP GET. It is network.Get in production.
type Fetcher func(ctx context.Context, url string, headers map[string]string) ([]byte, int, error)

// Client resolves video metadata, caching responses on disk.
type Client struct {
	fetch Fetcher
}

// New returns a client using the shared TLS network client.
func New() *Client {
	return &Client{fetch: network.Get}
}

// NewWithFetcher returns a client using fetch for requests.
func NewWithFetcher(fetch Fetcher) *Client {
	return &Client{fetch: fetch}
}

// RequestURL returns the oEmbed URL for a video ID.
func RequestURL(id string) string {
	query := url.Values{}
	query.Set("url", library.URL(id))
	query.Set("format", "json")
	return Endpoint + "?" + query.Encode()
}

// Lookup returns the metadata of a video.
func (c *Client) Lookup(ctx context.Context, id string) (Metadata, error) {
	key := cache.GenerateKey(id, "oembed")

	var meta Metadata
	if cache.Read(key, &meta) {
		return meta, nil
	}

	body, status, err := c.fetch(ctx, RequestURL(id), nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("oembed %s: %w", id, err)
	}

	if status != http.StatusOK {
		return Metadata{}, fmt.Errorf("%w: %s (status %d)", ErrNotFound, id, status)
	}

	if err := json.Unmarshal(body, &meta); err != nil {
		return Metadata{}, fmt.Errorf("oembed %s: decode: %w", id, err)
	}

	if err := cache.Write(key, meta); err != nil {
		log.Warnf("oembed: caching %s: %s", id, err)
	}

	return meta, nil
}

// Title returns the title of a video.
func (c *Client) Title(ctx context.Context, id string) (string, error) {
	meta, err := c.Lookup(ctx, id)
	if err != nil {
		return "", err
	}

	return meta.Title, nil
}
