// Package audio renders metronome clicks and provides the audio clock.
// The clock is the number of samples rendered so far, so it advances only as audio is produced.
package audio

import (
	"math"
	"sort"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/reprise-cli/reprise/metronome"
)

// DefaultSampleRate is used when no rate is configured.
const DefaultSampleRate beep.SampleRate = 44100

type voice struct {
	click metronome.Click
	start int64
}

// Engine is a beep.Streamer that mixes scheduled clicks into a mono signal on both channels.
type Engine struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	rendered   int64
	queue      []metronome.Click
	voices     []voice
}

// NewEngine returns an engine rendering at sampleRate.
func NewEngine(sampleRate beep.SampleRate) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return &Engine{sampleRate: sampleRate}
}

// SampleRate returns the rendering rate.
func (e *Engine) SampleRate() beep.SampleRate {
	return e.sampleRate
}

// Now returns the audio clock in seconds.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.rendered) / float64(e.sampleRate)
}

// Rendered returns the number of sample frames produced so far.
func (e *Engine) Rendered() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rendered
}

// Schedule queues a click at its absolute audio time. Clicks in the past start with the next rendered sample.
func (e *Engine) Schedule(click metronome.Click) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := sort.Search(len(e.queue), func(i int) bool { return e.queue[i].At > click.At })
	e.queue = append(e.queue, metronome.Click{})
	copy(e.queue[i+1:], e.queue[i:])
	e.queue[i] = click
}

// Pending returns the number of clicks not yet started.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Stream fills samples and advances the clock. It never ends.
func (e *Engine) Stream(samples [][2]float64) (n int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rate := float64(e.sampleRate)

	for i := range samples {
		pos := e.rendered + int64(i)

		for len(e.queue) > 0 {
			start := int64(math.Round(e.queue[0].At * rate))
			if start > pos {
				break
			}

			e.voices = append(e.voices, voice{click: e.queue[0], start: pos})
			e.queue = e.queue[1:]
		}

		var v float64
		live := e.voices[:0]
		for _, vc := range e.voices {
			t := float64(pos-vc.start) / rate
			if t >= vc.click.Length {
				continue
			}

			v += vc.click.Sample(t)
			live = append(live, vc)
		}
		e.voices = live

		samples[i][0] = v
		samples[i][1] = v
	}

	e.rendered += int64(len(samples))
	return len(samples), true
}

// Err always returns nil.
func (e *Engine) Err() error {
	return nil
}

var _ beep.Streamer = (*Engine)(nil)
