// Package practice measures time spent playing and keeps the daily practice log and streak.
package practice

import (
	"sync"
	"time"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/store"
)

const (
	DefaultTickInterval     = time.Second
	DefaultAutosaveInterval = 30 * time.Second
	DefaultRetentionDays    = 30
)

// Options tunes a Timer. Zero values fall back to the defaults.
// Negative intervals disable the background goroutines; Tick and Flush are then driven by the caller.
type Options struct {
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	RetentionDays    int
	Publisher        event.Publisher
}

// Timer accumulates whole seconds of playback and flushes them into the practice log.
type Timer struct {
	mu   sync.Mutex
	kv   store.KV
	wall clock.Wall
	opts Options

	log     Log
	seconds int
	running bool
	stop    chan struct{}
}

// NewTimer loads the practice log from kv and returns a stopped timer.
func NewTimer(kv store.KV, wall clock.Wall, opts Options) *Timer {
	if opts.TickInterval == 0 {
		opts.TickInterval = DefaultTickInterval
	}

	if opts.AutosaveInterval == 0 {
		opts.AutosaveInterval = DefaultAutosaveInterval
	}

	if opts.RetentionDays <= 0 {
		opts.RetentionDays = DefaultRetentionDays
	}

	if opts.Publisher == nil {
		opts.Publisher = event.Discard{}
	}

	return &Timer{
		kv:   kv,
		wall: wall,
		opts: opts,
		log:  LoadLog(kv),
	}
}

// OnPlaying starts counting if the timer is not already running.
func (t *Timer) OnPlaying() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	t.running = true
	t.startLoops()
}

// OnPausedOrEnded stops counting and flushes the session seconds.
func (t *Timer) OnPausedOrEnded() {
	t.mu.Lock()
	wasRunning := t.running
	t.running = false
	t.stopLoops()
	t.mu.Unlock()

	if wasRunning {
		t.Flush()
	}
}

// Running reports whether seconds are being counted.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Tick adds one second while running.
func (t *Timer) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.seconds++
	}
}

// SessionSeconds returns the seconds counted since the last flush.
func (t *Timer) SessionSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seconds
}

// Flush adds the unsaved seconds to today's minutes, prunes old days, saves and resets the counter.
// It does nothing below one second. A failed save is logged and the seconds are still reset.
func (t *Timer) Flush() {
	t.mu.Lock()

	if t.seconds < 1 {
		t.mu.Unlock()
		return
	}

	now := t.wall.Now()
	minutes := float64(t.seconds) / 60
	t.log.Add(now, minutes)
	t.log.Prune(now, t.opts.RetentionDays)
	t.seconds = 0
	today := t.log.Minutes(now)

	if err := t.log.Save(t.kv); err != nil {
		log.Warnf("practice: log not saved: %s", err)
	}

	t.mu.Unlock()

	t.opts.Publisher.Publish(event.Event{
		Kind: event.PracticeFlushed,
		Data: map[string]any{"minutes": minutes, "today": today},
	})
}

// TodayMinutes returns logged plus unsaved minutes for today.
func (t *Timer) TodayMinutes() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.log.Minutes(t.wall.Now()) + float64(t.seconds)/60
}

// Streak returns the current practice streak in days.
func (t *Timer) Streak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.log.Streak(t.wall.Now(), t.seconds > 0)
}

// Log returns a copy of the practice log including unsaved seconds.
func (t *Timer) Log() Log {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := make(Log, len(t.log))
	for k, v := range t.log {
		l[k] = v
	}

	if t.seconds > 0 {
		l.Add(t.wall.Now(), float64(t.seconds)/60)
	}

	return l
}

// Close stops counting and performs a final flush. It is safe to call more than once.
func (t *Timer) Close() {
	t.mu.Lock()
	t.running = false
	t.stopLoops()
	t.mu.Unlock()

	t.Flush()
}

// startLoops must be called with t.mu held.
func (t *Timer) startLoops() {
	if t.stop != nil {
		return
	}

	stop := make(chan struct{})
	t.stop = stop

	if t.opts.TickInterval > 0 {
		go every(stop, t.opts.TickInterval, t.Tick)
	}

	if t.opts.AutosaveInterval > 0 {
		go every(stop, t.opts.AutosaveInterval, t.Flush)
	}
}

// stopLoops must be called with t.mu held.
func (t *Timer) stopLoops() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func every(stop <-chan struct{}, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fn()
		}
	}
}
