// Package preset stores named loop regions per video.
package preset

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/reprise-cli/reprise/loop"
	"github.com/reprise-cli/reprise/store"
	"github.com/samber/lo"
)

var (
	ErrInvalidRegion = errors.New("loop start must be before its end")
	ErrNotFound      = errors.New("saved loop not found")
)

// Preset is a saved loop.
type Preset struct {
	ID      string    `json:"id" toml:"id"`
	Name    string    `json:"name" toml:"name"`
	Start   float64   `json:"start" toml:"start" jsonschema:"minimum=0"`
	End     float64   `json:"end" toml:"end" jsonschema:"minimum=0"`
	SavedAt time.Time `json:"savedAt" toml:"saved_at"`
}

// Region returns the preset as a loop region.
func (p Preset) Region() loop.Region {
	return loop.NewRegion(p.Start, p.End)
}

// Length returns the loop length in seconds.
func (p Preset) Length() float64 {
	return p.End - p.Start
}

// StoreKey returns the store key holding the presets of a video.
func StoreKey(videoID string) string {
	return "loops_" + videoID
}

// Book is the store-backed collection of presets for all videos.
type Book struct {
	mu  sync.Mutex
	kv  store.KV
	now func() time.Time
}

func New(kv store.KV) *Book {
	return &Book{kv: kv, now: time.Now}
}

func (b *Book) load(videoID string) []Preset {
	var presets []Preset
	store.LoadJSON(b.kv, StoreKey(videoID), &presets)
	return presets
}

func (b *Book) save(videoID string, presets []Preset) error {
	if len(presets) == 0 {
		return b.kv.Remove(StoreKey(videoID))
	}
	return store.SaveJSON(b.kv, StoreKey(videoID), presets)
}

// List returns the presets of a video in the order they were saved.
func (b *Book) List(videoID string) []Preset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(videoID)
}

// Save stores a new preset. An empty name becomes "Loop N", N being the new count.
func (b *Book) Save(videoID, name string, start, end float64) (Preset, error) {
	if !(start < end) || start < 0 {
		return Preset{}, ErrInvalidRegion
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	presets := b.load(videoID)
	if name == "" {
		name = fmt.Sprintf("Loop %d", len(presets)+1)
	}

	p := Preset{
		ID:      uuid.NewString(),
		Name:    name,
		Start:   start,
		End:     end,
		SavedAt: b.now(),
	}

	return p, b.save(videoID, append(presets, p))
}

// Get returns the preset with id.
func (b *Book) Get(videoID, id string) (Preset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := lo.Find(b.load(videoID), func(p Preset) bool { return p.ID == id })
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return p, nil
}

// Delete removes the preset with id.
func (b *Book) Delete(videoID, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	presets := b.load(videoID)
	kept := lo.Reject(presets, func(p Preset, _ int) bool { return p.ID == id })
	if len(kept) == len(presets) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return b.save(videoID, kept)
}

// Find ranks the presets whose names fuzzily match query, best first.
func (b *Book) Find(videoID, query string) []Preset {
	presets := b.List(videoID)
	names := lo.Map(presets, func(p Preset, _ int) string { return p.Name })

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) Preset { return presets[r.OriginalIndex] })
}

// Count returns the number of presets saved for videoIDs.
func (b *Book) Count(videoIDs ...string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return lo.SumBy(videoIDs, func(id string) int { return len(b.load(id)) })
}
