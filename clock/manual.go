package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a wall clock that only moves when told to. Pending AfterFunc calls fire
// synchronously from Advance, in deadline order.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
}

type manualTimer struct {
	owner *Manual
	at    time.Time
	f     func()
	done  bool
}

// NewManual returns a manual wall clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{owner: m, at: m.now.Add(d), f: f}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the clock forward by d and fires every timer that came due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now

	var due, rest []*manualTimer
	for _, t := range m.pending {
		if t.done {
			continue
		}
		if !t.at.After(now) {
			t.done = true
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.pending = rest
	m.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Set jumps to t without firing timers.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Pending reports how many AfterFunc calls have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.pending {
		if !t.done {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	wasPending := !t.done
	t.done = true
	return wasPending
}

// ManualAudio is an audio clock that only moves when told to.
type ManualAudio struct {
	mu  sync.Mutex
	now float64
}

func (a *ManualAudio) Now() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now
}

// Advance moves the audio clock forward by seconds.
func (a *ManualAudio) Advance(seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now += seconds
}
