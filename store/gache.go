package store

import (
	"sync"

	"github.com/metafates/gache"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/log"
)

// Gache keeps every key in one JSON map file on the active filesystem.
type Gache struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]string]
}

// NewGache returns a store backed by the JSON file at path.
func NewGache(path string) *Gache {
	return &Gache{
		cacher: gache.New[map[string]string](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func (g *Gache) load() map[string]string {
	cached, expired, err := g.cacher.Get()
	if err != nil {
		log.Warnf("store: unreadable store file, starting empty: %s", err)
		return make(map[string]string)
	}

	if expired || cached == nil {
		return make(map[string]string)
	}

	return cached
}

func (g *Gache) Get(key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	value, ok := g.load()[key]
	return value, ok, nil
}

func (g *Gache) Set(key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	values := g.load()
	values[key] = value
	return g.cacher.Set(values)
}

func (g *Gache) Remove(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	values := g.load()
	if _, ok := values[key]; !ok {
		return nil
	}

	delete(values, key)
	return g.cacher.Set(values)
}
