// Package event carries the notifications the practice engine emits for the UI and analytics.
package event

import (
	"sync"
	"time"
)

// Kind names a notification.
type Kind string

const (
	RepCounted               Kind = "rep_counted"
	SpeedChanged             Kind = "speed_changed"
	ProgressiveSpeedUp       Kind = "progressive_speed_up"
	ProgressiveTargetReached Kind = "progressive_target_reached"
	MetronomeStarted         Kind = "metronome_started"
	MetronomeStopped         Kind = "metronome_stopped"
	LoopEnabled              Kind = "loop_enabled"
	LoopDisabled             Kind = "loop_disabled"
	PracticeFlushed          Kind = "practice_flushed"
)

// Event is a single notification. Data holds kind-specific values such as "speed" or "reps".
type Event struct {
	Kind Kind
	At   time.Time
	Data map[string]any
}

// Float returns Data[name] as a float64, or 0.
func (e Event) Float(name string) float64 {
	switch v := e.Data[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Int returns Data[name] as an int, or 0.
func (e Event) Int(name string) int {
	switch v := e.Data[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Publisher accepts events.
type Publisher interface {
	Publish(Event)
}

// Bus fans events out to subscribers synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers e to every current subscriber. A zero At is stamped with time.Now.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
