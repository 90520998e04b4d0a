package trainer

import (
	"math"

	"github.com/samber/lo"
)

const (
	DefaultRepsPerStep = 3
	DefaultSpeedStep   = 0.05
	DefaultTargetSpeed = 1.0

	MinRepsPerStep = 1
	MaxRepsPerStep = 20
	MinSpeedStep   = 0.01
	MaxSpeedStep   = 0.25
	MinTargetSpeed = 0.25
	MaxTargetSpeed = 2.0

	// StoreKey holds the last used progressive settings.
	StoreKey = "progressiveSettings"
)

// Settings are the user-tunable parts of progressive training.
type Settings struct {
	RepsPerStep int     `json:"repsPerStep" jsonschema:"minimum=1,maximum=20,default=3"`
	SpeedStep   float64 `json:"speedStep" jsonschema:"minimum=0.01,maximum=0.25,default=0.05"`
	TargetSpeed float64 `json:"targetSpeed" jsonschema:"minimum=0.25,maximum=2,default=1"`
}

// DefaultSettings returns 3 reps per step, +0.05x per step, up to 1.0x.
func DefaultSettings() Settings {
	return Settings{
		RepsPerStep: DefaultRepsPerStep,
		SpeedStep:   DefaultSpeedStep,
		TargetSpeed: DefaultTargetSpeed,
	}
}

// Normalize clamps every field into its valid range.
func (s Settings) Normalize() Settings {
	return Settings{
		RepsPerStep: ClampReps(s.RepsPerStep),
		SpeedStep:   ClampStep(s.SpeedStep),
		TargetSpeed: ClampTarget(s.TargetSpeed),
	}
}

// ClampReps maps 0 to the default and clamps the rest to [1, 20].
func ClampReps(n int) int {
	if n == 0 {
		return DefaultRepsPerStep
	}
	return lo.Clamp(n, MinRepsPerStep, MaxRepsPerStep)
}

// ClampStep maps 0 and NaN to the default and clamps the rest to [0.01, 0.25].
func ClampStep(step float64) float64 {
	return clampFloat(step, DefaultSpeedStep, MinSpeedStep, MaxSpeedStep)
}

// ClampTarget maps 0 and NaN to the default and clamps the rest to [0.25, 2.0].
func ClampTarget(target float64) float64 {
	return clampFloat(target, DefaultTargetSpeed, MinTargetSpeed, MaxTargetSpeed)
}

func clampFloat(v, fallback, lower, upper float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return fallback
	}
	return lo.Clamp(v, lower, upper)
}

// Rebase replaces every field of s whose configured value moved from previous to
// configured. Fields the configuration left alone keep their value in s.
func (s Settings) Rebase(previous, configured Settings) Settings {
	if configured.RepsPerStep != previous.RepsPerStep {
		s.RepsPerStep = configured.RepsPerStep
	}
	if configured.SpeedStep != previous.SpeedStep {
		s.SpeedStep = configured.SpeedStep
	}
	if configured.TargetSpeed != previous.TargetSpeed {
		s.TargetSpeed = configured.TargetSpeed
	}
	return s
}
