// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Loop Controller - boundary polling and repetition counting.
const (
	LoopPollIntervalMs = "loop.poll_interval_ms"
	LoopRepSpacingMs   = "loop.rep_spacing_ms"
)

// Progressive Training - defaults applied when no saved settings exist.
const (
	ProgressiveRepsPerStep = "progressive.reps_per_step"
	ProgressiveSpeedStep   = "progressive.speed_step"
	ProgressiveTargetSpeed = "progressive.target_speed"
)

// Practice Log
const (
	PracticeAutosaveIntervalS = "practice.autosave_interval_s"
	PracticeRetentionDays     = "practice.retention_days"
	PracticeStreakDisplayMin  = "practice.streak_display_min"
)

// Metronome - scheduling windows and defaults for a fresh install.
const (
	MetronomeBPM             = "metronome.bpm"
	MetronomeTimeSignature   = "metronome.time_signature"
	MetronomeVolume          = "metronome.volume"
	MetronomeLookaheadMs     = "metronome.lookahead_ms"
	MetronomeScheduleAheadMs = "metronome.schedule_ahead_ms"
	MetronomeSampleRate      = "metronome.sample_rate"
	MetronomeAudioBufferMs   = "metronome.audio_buffer_ms"
)

// Media Playback
const (
	Player         = "player.default"
	PlayerSeekStep = "player.seek_step"
)

// Persistence
const (
	StoreBackend = "store.backend"
)

// Metadata
const (
	MetadataFetchTitles = "metadata.fetch_titles"
)

// Sharing
const (
	ShareBaseURL = "share.base_url"
)

// Iconography
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI)
const (
	TUIItemSpacing = "tui.item_spacing"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
