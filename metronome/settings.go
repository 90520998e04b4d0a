package metronome

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const (
	MinBPM        = 20
	MaxBPM        = 300
	DefaultBPM    = 120
	DefaultVolume = 0.7

	// StoreKey holds the last used metronome settings.
	StoreKey = "metronomeSettings"
)

// ErrTimeSignature is returned for a signature that is not offered.
var ErrTimeSignature = errors.New("unsupported time signature")

// TimeSignature is beats per measure over the note value.
type TimeSignature struct {
	Beats     int
	NoteValue int
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.NoteValue)
}

var (
	CommonTime     = TimeSignature{Beats: 4, NoteValue: 4}
	TimeSignatures = []TimeSignature{
		{Beats: 2, NoteValue: 4},
		{Beats: 3, NoteValue: 4},
		CommonTime,
		{Beats: 5, NoteValue: 4},
		{Beats: 6, NoteValue: 8},
		{Beats: 7, NoteValue: 8},
	}
)

// ParseTimeSignature parses one of the offered signatures, e.g. "6/8".
func ParseTimeSignature(s string) (TimeSignature, error) {
	beats, note, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return TimeSignature{}, fmt.Errorf("%w: %q", ErrTimeSignature, s)
	}

	b, errBeats := strconv.Atoi(beats)
	n, errNote := strconv.Atoi(note)
	ts := TimeSignature{Beats: b, NoteValue: n}
	if errBeats != nil || errNote != nil || !lo.Contains(TimeSignatures, ts) {
		return TimeSignature{}, fmt.Errorf("%w: %q", ErrTimeSignature, s)
	}

	return ts, nil
}

// NextTimeSignature returns the offered signature after ts, wrapping around.
func NextTimeSignature(ts TimeSignature) TimeSignature {
	_, i, ok := lo.FindIndexOf(TimeSignatures, func(item TimeSignature) bool { return item == ts })
	if !ok {
		return CommonTime
	}

	return TimeSignatures[(i+1)%len(TimeSignatures)]
}

// ClampBPM limits bpm to [20, 300].
func ClampBPM(bpm int) int {
	return lo.Clamp(bpm, MinBPM, MaxBPM)
}

// ClampVolume limits volume to [0, 1]. NaN is silent.
func ClampVolume(volume float64) float64 {
	if math.IsNaN(volume) {
		return 0
	}
	return lo.Clamp(volume, 0, 1)
}

// Settings are the persisted metronome preferences.
type Settings struct {
	BPM           int     `json:"bpm" jsonschema:"minimum=20,maximum=300,default=120"`
	TimeSignature string  `json:"timeSignature" jsonschema:"enum=2/4,enum=3/4,enum=4/4,enum=5/4,enum=6/8,enum=7/8,default=4/4"`
	Volume        float64 `json:"volume" jsonschema:"minimum=0,maximum=1,default=0.7"`
}

// DefaultSettings returns 120 BPM in 4/4 at 0.7 volume.
func DefaultSettings() Settings {
	return Settings{BPM: DefaultBPM, TimeSignature: CommonTime.String(), Volume: DefaultVolume}
}

// Normalize clamps the values and replaces an unknown signature with 4/4.
func (s Settings) Normalize() Settings {
	if _, err := ParseTimeSignature(s.TimeSignature); err != nil {
		s.TimeSignature = CommonTime.String()
	}

	s.BPM = ClampBPM(s.BPM)
	s.Volume = ClampVolume(s.Volume)
	return s
}

// Rebase replaces every field of s whose configured value moved from previous to
// configured. Fields the configuration left alone keep their value in s.
func (s Settings) Rebase(previous, configured Settings) Settings {
	if configured.BPM != previous.BPM {
		s.BPM = configured.BPM
	}
	if configured.TimeSignature != previous.TimeSignature {
		s.TimeSignature = configured.TimeSignature
	}
	if configured.Volume != previous.Volume {
		s.Volume = configured.Volume
	}
	return s
}
