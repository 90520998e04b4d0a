package playback

import (
	"sync"
)

// Fake is an in-memory Player. Time moves only through Advance.
type Fake struct {
	mu       sync.Mutex
	position float64
	duration float64
	rate     float64
	state    State
	err      error
	loaded   string
	exited   chan struct{}
	closed   bool

	// Seeks records every SeekTo target in order.
	Seeks []float64

	subs subscribers
}

// NewFake returns a paused fake with the given media duration.
func NewFake(duration float64) *Fake {
	return &Fake{
		duration: duration,
		rate:     1,
		state:    Paused,
		exited:   make(chan struct{}),
	}
}

// Fail makes every subsequent query and command return err until Fail(nil).
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Advance moves the position forward by seconds of wall time scaled by the rate, while playing.
func (f *Fake) Advance(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Playing {
		return
	}

	f.position += seconds * f.rate
	if f.duration > 0 && f.position > f.duration {
		f.position = f.duration
	}
}

// SetPosition jumps to seconds without recording a seek.
func (f *Fake) SetPosition(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = seconds
}

// SetState changes the state and notifies subscribers.
func (f *Fake) SetState(state State) {
	f.mu.Lock()
	changed := f.state != state
	f.state = state
	f.mu.Unlock()

	if changed {
		f.subs.notify(state)
	}
}

// State returns the current state.
func (f *Fake) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Loaded returns the last loaded URL.
func (f *Fake) Loaded() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *Fake) CurrentTime() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, f.err
}

func (f *Fake) Duration() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, f.err
}

func (f *Fake) SeekTo(seconds float64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.position = seconds
	f.Seeks = append(f.Seeks, seconds)
	return nil
}

func (f *Fake) Play() error {
	if err := f.failure(); err != nil {
		return err
	}

	f.SetState(Playing)
	return nil
}

func (f *Fake) Pause() error {
	if err := f.failure(); err != nil {
		return err
	}

	f.SetState(Paused)
	return nil
}

func (f *Fake) SetRate(rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.rate = rate
	return nil
}

func (f *Fake) Rate() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate, f.err
}

func (f *Fake) Subscribe(fn func(State)) func() {
	return f.subs.add(fn)
}

// Load records url and starts playing from the beginning.
func (f *Fake) Load(url, _ string) error {
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return f.err
	}
	f.loaded = url
	f.position = 0
	f.mu.Unlock()

	f.SetState(Playing)
	return nil
}

func (f *Fake) Wait() <-chan struct{} {
	return f.exited
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.exited)
	}
	return nil
}

func (f *Fake) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
