package metronome

import (
	"math"
	"time"

	"github.com/samber/lo"
)

const (
	maxTaps  = 8
	tapReset = 2 * time.Second
)

// Tapper derives a tempo from the intervals between taps.
type Tapper struct {
	taps []time.Time
}

// Tap records a tap at now. With at least two taps it returns the averaged BPM, clamped to [20, 300].
// A pause longer than two seconds starts a new sequence.
func (t *Tapper) Tap(now time.Time) (bpm int, ok bool) {
	if n := len(t.taps); n > 0 && now.Sub(t.taps[n-1]) > tapReset {
		t.taps = t.taps[:0]
	}

	t.taps = append(t.taps, now)
	if len(t.taps) > maxTaps {
		t.taps = t.taps[len(t.taps)-maxTaps:]
	}

	if len(t.taps) < 2 {
		return 0, false
	}

	intervals := make([]float64, 0, len(t.taps)-1)
	for i := 1; i < len(t.taps); i++ {
		intervals = append(intervals, float64(t.taps[i].Sub(t.taps[i-1]).Milliseconds()))
	}

	mean := lo.Sum(intervals) / float64(len(intervals))
	if mean <= 0 {
		return MaxBPM, true
	}

	return ClampBPM(int(math.Round(60000 / mean))), true
}

// Len returns the number of taps in the current sequence.
func (t *Tapper) Len() int {
	return len(t.taps)
}
