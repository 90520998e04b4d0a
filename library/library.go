// Package library keeps the list of videos the user practices with.
package library

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/reprise-cli/reprise/store"
	"github.com/samber/lo"
)

// StoreKey is the store key holding the library.
const StoreKey = "videos"

var (
	ErrExists   = errors.New("video is already in the library")
	ErrNotFound = errors.New("video is not in the library")
)

// Video is a library entry.
type Video struct {
	ID      string    `json:"id" jsonschema:"pattern=^[A-Za-z0-9_-]{11}$"`
	Title   string    `json:"title,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}

// Name returns the title, or the ID when the title is unknown.
func (v Video) Name() string {
	if v.Title != "" {
		return v.Title
	}
	return v.ID
}

// URL returns the watch URL.
func (v Video) URL() string {
	return URL(v.ID)
}

// Library is an ordered, store-backed list of videos.
type Library struct {
	mu  sync.Mutex
	kv  store.KV
	now func() time.Time
}

// New returns a library persisted in kv.
func New(kv store.KV) *Library {
	return &Library{kv: kv, now: time.Now}
}

func (l *Library) load() []Video {
	var videos []Video
	store.LoadJSON(l.kv, StoreKey, &videos)
	return videos
}

// List returns every video in insertion order.
func (l *Library) List() []Video {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Get returns the video with id.
func (l *Library) Get(id string) (Video, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	video, ok := lo.Find(l.load(), func(v Video) bool { return v.ID == id })
	if !ok {
		return Video{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return video, nil
}

// Add parses input as a URL or ID and appends the video.
// Adding a video twice returns the existing entry and ErrExists.
func (l *Library) Add(input, title string) (Video, error) {
	id, err := ExtractID(input)
	if err != nil {
		return Video{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	videos := l.load()
	if existing, ok := lo.Find(videos, func(v Video) bool { return v.ID == id }); ok {
		return existing, ErrExists
	}

	video := Video{ID: id, Title: title, AddedAt: l.now()}
	videos = append(videos, video)
	return video, store.SaveJSON(l.kv, StoreKey, videos)
}

// Remove deletes the video with id.
func (l *Library) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	videos := l.load()
	kept := lo.Reject(videos, func(v Video, _ int) bool { return v.ID == id })
	if len(kept) == len(videos) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return store.SaveJSON(l.kv, StoreKey, kept)
}

// SetTitle updates the title of the video with id.
func (l *Library) SetTitle(id, title string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	videos := l.load()
	_, i, ok := lo.FindIndexOf(videos, func(v Video) bool { return v.ID == id })
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	videos[i].Title = title
	return store.SaveJSON(l.kv, StoreKey, videos)
}

// Search ranks videos whose title or ID fuzzily matches query, best first.
func (l *Library) Search(query string) []Video {
	videos := l.List()
	if query == "" {
		return videos
	}

	names := lo.Map(videos, func(v Video, _ int) string { return v.Name() })
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) Video { return videos[r.OriginalIndex] })
}
