package playback

import (
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// subscribers is a set of state listeners shared by the handle implementations.
type subscribers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(State)
}

func (s *subscribers) add(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func(State))
	}

	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

// notify calls every listener in registration order, outside the lock.
func (s *subscribers) notify(state State) {
	s.mu.Lock()
	ids := lo.Keys(s.fns)
	s.mu.Unlock()

	slices.Sort(ids)

	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.fns[id]
		s.mu.Unlock()
		if ok {
			fn(state)
		}
	}
}
