package session

import (
	"time"

	"github.com/reprise-cli/reprise/config"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/trainer"
	"github.com/spf13/viper"
)

// Options holds the tunables of a session. Negative intervals disable the matching
// background goroutine so callers can drive the components by hand.
type Options struct {
	LoopPollInterval time.Duration
	RepSpacing       time.Duration
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	RetentionDays    int
	Lookahead        time.Duration
	ScheduleAhead    time.Duration
	Trainer          trainer.Settings
	Metronome        metronome.Settings
	StreakDisplayMin int
	SeekStep         float64
	ShareBaseURL     string
	FetchTitles      bool
	DisableAnalytics bool
}

// OptionsFromConfig reads the options from the configuration.
func OptionsFromConfig() Options {
	return Options{
		LoopPollInterval: config.Millis(key.LoopPollIntervalMs),
		RepSpacing:       config.Millis(key.LoopRepSpacingMs),
		AutosaveInterval: config.Seconds(key.PracticeAutosaveIntervalS),
		RetentionDays:    viper.GetInt(key.PracticeRetentionDays),
		Lookahead:        config.Millis(key.MetronomeLookaheadMs),
		ScheduleAhead:    config.Millis(key.MetronomeScheduleAheadMs),
		Trainer: trainer.Settings{
			RepsPerStep: viper.GetInt(key.ProgressiveRepsPerStep),
			SpeedStep:   viper.GetFloat64(key.ProgressiveSpeedStep),
			TargetSpeed: viper.GetFloat64(key.ProgressiveTargetSpeed),
		}.Normalize(),
		Metronome: metronome.Settings{
			BPM:           viper.GetInt(key.MetronomeBPM),
			TimeSignature: viper.GetString(key.MetronomeTimeSignature),
			Volume:        viper.GetFloat64(key.MetronomeVolume),
		}.Normalize(),
		StreakDisplayMin: viper.GetInt(key.PracticeStreakDisplayMin),
		SeekStep:         viper.GetFloat64(key.PlayerSeekStep),
		ShareBaseURL:     viper.GetString(key.ShareBaseURL),
		FetchTitles:      viper.GetBool(key.MetadataFetchTitles),
	}
}
