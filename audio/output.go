package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/reprise-cli/reprise/log"
)

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// Output drives an Engine: through the sound card when one is available, otherwise
// through a silent pump that renders in real time so the audio clock keeps moving.
type Output struct {
	mu       sync.Mutex // guards volume in headless mode
	engine   *Engine
	volume   *effects.Volume
	buffer   time.Duration
	headless bool
	stop     chan struct{}
	once     sync.Once
}

// Open starts rendering engine with the given speaker buffer length.
// Failing to open the speaker is not an error; the output falls back to headless mode.
func Open(engine *Engine, buffer time.Duration) *Output {
	if buffer <= 0 {
		buffer = 20 * time.Millisecond
	}

	o := &Output{
		engine: engine,
		volume: &effects.Volume{Streamer: engine, Base: 2},
		buffer: buffer,
		stop:   make(chan struct{}),
	}

	if err := initSpeaker(engine.SampleRate(), buffer); err != nil {
		log.Warnf("audio: no output device, clicks are silent: %s", err)
		o.headless = true
		go o.pump()
		return o
	}

	speaker.Play(o.volume)
	return o
}

// OpenHeadless starts rendering engine without touching the sound card.
func OpenHeadless(engine *Engine, buffer time.Duration) *Output {
	if buffer <= 0 {
		buffer = 20 * time.Millisecond
	}

	o := &Output{
		engine:   engine,
		volume:   &effects.Volume{Streamer: engine, Base: 2},
		buffer:   buffer,
		headless: true,
		stop:     make(chan struct{}),
	}

	go o.pump()
	return o
}

func initSpeaker(rate beep.SampleRate, buffer time.Duration) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerInitialized {
		if speakerSampleRate != rate {
			log.Warnf("audio: speaker already running at %d Hz, wanted %d Hz", speakerSampleRate, rate)
		}
		return nil
	}

	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return err
	}

	speakerInitialized = true
	speakerSampleRate = rate
	return nil
}

// Headless reports whether no sound card is in use.
func (o *Output) Headless() bool {
	return o.headless
}

// SetMuted silences the output without stopping the clock.
func (o *Output) SetMuted(muted bool) {
	if o.headless {
		o.mu.Lock()
		o.volume.Silent = muted
		o.mu.Unlock()
		return
	}

	speaker.Lock()
	o.volume.Silent = muted
	speaker.Unlock()
}

// pump renders as many frames as real time demands, one buffer period at a time.
func (o *Output) pump() {
	ticker := time.NewTicker(o.buffer)
	defer ticker.Stop()

	rate := o.engine.SampleRate()
	started := time.Now()
	base := o.engine.Rendered()
	buf := make([][2]float64, rate.N(o.buffer)*2)

	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
			due := base + int64(rate.N(time.Since(started))) - o.engine.Rendered()
			for due > 0 {
				chunk := buf
				if int64(len(chunk)) > due {
					chunk = chunk[:due]
				}
				o.mu.Lock()
				n, _ := o.volume.Stream(chunk)
				o.mu.Unlock()
				due -= int64(n)
			}
		}
	}
}

// Close stops rendering. It is safe to call more than once.
func (o *Output) Close() {
	o.once.Do(func() {
		close(o.stop)
		if !o.headless {
			speaker.Clear()
		}
	})
}
