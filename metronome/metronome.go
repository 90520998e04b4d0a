// Package metronome schedules click sounds ahead of time on the audio clock
// and mirrors each beat as a visual flash on the wall clock.
package metronome

import (
	"sync"
	"time"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/event"
)

const (
	DefaultLookahead     = 25 * time.Millisecond
	DefaultScheduleAhead = 100 * time.Millisecond

	// FlashLength is how long a beat stays lit.
	FlashLength = 100 * time.Millisecond
)

// Output plays clicks at their audio-clock time.
type Output interface {
	Schedule(Click)
}

// Flash is a visual beat signal. On is false when the beat indicator should go dark.
type Flash struct {
	On       bool
	Downbeat bool
	// Beat is the position in the measure, counted from 0.
	Beat int
}

// Options tunes a Metronome. Zero values fall back to the defaults.
// A negative Lookahead disables the background scheduler; Tick is then driven by the caller.
type Options struct {
	Lookahead     time.Duration
	ScheduleAhead time.Duration
	Publisher     event.Publisher
}

// Metronome is a lookahead click scheduler.
type Metronome struct {
	mu     sync.Mutex
	audio  clock.Audio
	out    Output
	wall   clock.Wall
	opts   Options
	tapper Tapper

	running      bool
	generation   int
	bpm          int
	signature    TimeSignature
	volume       float64
	beatCount    int
	nextNoteTime float64

	flashes []func(Flash)
	pending map[clock.Timer]struct{}
	stop    chan struct{}
}

// New returns a stopped metronome with the given settings.
func New(audio clock.Audio, out Output, wall clock.Wall, settings Settings, opts Options) *Metronome {
	if opts.Lookahead == 0 {
		opts.Lookahead = DefaultLookahead
	}

	if opts.ScheduleAhead <= 0 {
		opts.ScheduleAhead = DefaultScheduleAhead
	}

	if opts.Publisher == nil {
		opts.Publisher = event.Discard{}
	}

	settings = settings.Normalize()
	signature, _ := ParseTimeSignature(settings.TimeSignature)

	return &Metronome{
		audio:     audio,
		out:       out,
		wall:      wall,
		opts:      opts,
		bpm:       settings.BPM,
		signature: signature,
		volume:    settings.Volume,
		pending:   make(map[clock.Timer]struct{}),
	}
}

// OnFlash registers fn for visual beat signals.
func (m *Metronome) OnFlash(fn func(Flash)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flashes = append(m.flashes, fn)
}

// Start resets the beat count, schedules the first notes immediately and keeps scheduling every lookahead.
func (m *Metronome) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}

	data := m.start()
	m.mu.Unlock()

	m.started(data)
}

// start must be called with m.mu held on a stopped metronome.
func (m *Metronome) start() map[string]any {
	m.running = true
	m.generation++
	m.beatCount = 0
	m.nextNoteTime = m.audio.Now()
	m.schedule()

	if m.opts.Lookahead > 0 {
		m.stop = make(chan struct{})
		go m.run(m.stop)
	}

	return map[string]any{"bpm": m.bpm, "timeSignature": m.signature.String()}
}

func (m *Metronome) started(data map[string]any) {
	m.opts.Publisher.Publish(event.Event{Kind: event.MetronomeStarted, Data: data})
}

func (m *Metronome) run(stop <-chan struct{}) {
	ticker := time.NewTicker(m.opts.Lookahead)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Stop cancels scheduling and pending flashes and darkens the beat indicator.
// The beat count is kept. Stopping a stopped metronome does nothing.
func (m *Metronome) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}

	listeners := m.halt()
	m.mu.Unlock()

	m.stopped(listeners)
}

// halt must be called with m.mu held on a running metronome. It returns the flash
// listeners to darken.
func (m *Metronome) halt() []func(Flash) {
	m.running = false
	m.generation++
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}

	for timer := range m.pending {
		timer.Stop()
	}
	m.pending = make(map[clock.Timer]struct{})

	return m.flashes
}

func (m *Metronome) stopped(listeners []func(Flash)) {
	for _, fn := range listeners {
		fn(Flash{})
	}

	m.opts.Publisher.Publish(event.Event{Kind: event.MetronomeStopped})
}

// Toggle starts or stops the metronome and returns whether it is running.
func (m *Metronome) Toggle() bool {
	m.mu.Lock()
	if m.running {
		listeners := m.halt()
		m.mu.Unlock()

		m.stopped(listeners)
		return false
	}

	data := m.start()
	m.mu.Unlock()

	m.started(data)
	return true
}

// Tick runs one scheduling pass.
func (m *Metronome) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.schedule()
	}
}

// schedule must be called with m.mu held.
func (m *Metronome) schedule() {
	now := m.audio.Now()
	horizon := now + m.opts.ScheduleAhead.Seconds()

	for m.nextNoteTime < horizon {
		beat := m.beatCount % m.signature.Beats
		downbeat := beat == 0

		m.out.Schedule(NewClick(m.nextNoteTime, downbeat, m.volume))
		m.scheduleFlash(time.Duration((m.nextNoteTime-now)*float64(time.Second)), Flash{On: true, Downbeat: downbeat, Beat: beat})

		m.nextNoteTime += 60 / float64(m.bpm)
		m.beatCount++
	}
}

// scheduleFlash must be called with m.mu held. Timer callbacks take the lock before
// touching their own handle, which is assigned under the same lock. A callback that
// fires after the run it belongs to has been stopped does nothing.
func (m *Metronome) scheduleFlash(delay time.Duration, flash Flash) {
	if delay < 0 {
		delay = 0
	}

	generation := m.generation

	var on clock.Timer
	on = m.wall.AfterFunc(delay, func() {
		m.mu.Lock()
		delete(m.pending, on)
		if !m.current(generation) {
			m.mu.Unlock()
			return
		}

		var off clock.Timer
		off = m.wall.AfterFunc(FlashLength, func() {
			m.mu.Lock()
			delete(m.pending, off)
			current := m.current(generation)
			m.mu.Unlock()

			if current {
				m.emit(Flash{})
			}
		})
		m.pending[off] = struct{}{}
		m.mu.Unlock()

		m.emit(flash)
	})
	m.pending[on] = struct{}{}
}

// current must be called with m.mu held.
func (m *Metronome) current(generation int) bool {
	return m.running && m.generation == generation
}

func (m *Metronome) emit(flash Flash) {
	m.mu.Lock()
	listeners := m.flashes
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(flash)
	}
}

func (m *Metronome) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// BeatCount returns the number of beats scheduled since the last start or signature change.
func (m *Metronome) BeatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beatCount
}

// NextNoteTime returns the audio time of the next unscheduled beat.
func (m *Metronome) NextNoteTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextNoteTime
}

func (m *Metronome) BPM() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bpm
}

// SetBPM clamps and applies bpm and returns the stored value. It takes effect from the next unscheduled beat.
func (m *Metronome) SetBPM(bpm int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bpm = ClampBPM(bpm)
	return m.bpm
}

func (m *Metronome) TimeSignature() TimeSignature {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signature
}

// SetTimeSignature changes the meter and restarts counting from the downbeat.
func (m *Metronome) SetTimeSignature(ts TimeSignature) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ts.Beats <= 0 {
		ts = CommonTime
	}

	m.signature = ts
	m.beatCount = 0
}

func (m *Metronome) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SetVolume clamps and applies volume and returns the stored value.
func (m *Metronome) SetVolume(volume float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = ClampVolume(volume)
	return m.volume
}

// Tap records a tap on the wall clock and applies the derived tempo once there are two taps.
func (m *Metronome) Tap() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bpm, ok := m.tapper.Tap(m.wall.Now())
	if ok {
		m.bpm = bpm
	}

	return bpm, ok
}

// Settings returns the current settings for persistence.
func (m *Metronome) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Settings{BPM: m.bpm, TimeSignature: m.signature.String(), Volume: m.volume}
}
