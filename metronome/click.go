package metronome

import "math"

const (
	DownbeatFrequency = 1000.0
	BeatFrequency     = 800.0
	ClickLength       = 0.05
	// DecayFloor is the gain the click envelope decays to at its end.
	DecayFloor = 0.001
)

// Click is a short sine burst scheduled at an absolute audio-clock time.
type Click struct {
	At        float64
	Frequency float64
	Length    float64
	Volume    float64
	Downbeat  bool
}

// NewClick returns the click for a beat at audio time at.
func NewClick(at float64, downbeat bool, volume float64) Click {
	frequency := BeatFrequency
	if downbeat {
		frequency = DownbeatFrequency
	}

	return Click{
		At:        at,
		Frequency: frequency,
		Length:    ClickLength,
		Volume:    volume,
		Downbeat:  downbeat,
	}
}

// Gain returns the envelope gain t seconds after the click starts:
// an exponential ramp from Volume down to DecayFloor over Length, silent outside it.
func (c Click) Gain(t float64) float64 {
	if t < 0 || t >= c.Length || c.Volume <= 0 {
		return 0
	}

	if c.Volume <= DecayFloor {
		return c.Volume
	}

	return c.Volume * math.Pow(DecayFloor/c.Volume, t/c.Length)
}

// Sample returns the click's signal t seconds after it starts.
func (c Click) Sample(t float64) float64 {
	return math.Sin(2*math.Pi*c.Frequency*t) * c.Gain(t)
}
