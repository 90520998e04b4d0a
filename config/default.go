package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
	// Bounds is the inclusive range accepted for numeric fields.
	Bounds mo.Option[lo.Tuple2[float64, float64]]
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Reprise + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	var bounds []float64
	if b, ok := f.Bounds.Get(); ok {
		bounds = []float64{b.A, b.B}
	}

	return json.Marshal(struct {
		Key         string    `json:"key"`
		Value       any       `json:"value"`
		Default     any       `json:"default"`
		Description string    `json:"description"`
		Type        string    `json:"type"`
		Range       []float64 `json:"range,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
		Range:       bounds,
	})
}

// RangeText describes the bounds, or returns "" for unbounded fields.
func (f *Field) RangeText() string {
	b, ok := f.Bounds.Get()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%v to %v", b.A, b.B)
}

// TypeName returns the name of the field's value type as shown to users.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Parse converts raw CLI input into a value of the field's type.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no value for %s", f.Key)
	}

	switch f.Value.(type) {
	case string:
		return raw[0], nil
	case int:
		v, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", raw[0])
		}
		return v, nil
	case float64:
		v, err := strconv.ParseFloat(raw[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value: %s", raw[0])
		}
		return v, nil
	case bool:
		v, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", raw[0])
		}
		return v, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported type for %s", f.Key)
	}
}

// Validate reports whether v is within the field's bounds.
func (f *Field) Validate(v any) error {
	bounds, ok := f.Bounds.Get()
	if !ok {
		return nil
	}

	var n float64
	switch value := v.(type) {
	case int:
		n = float64(value)
	case float64:
		n = value
	default:
		return nil
	}

	if n < bounds.A || n > bounds.B {
		return fmt.Errorf("%s must be between %v and %v, got %v", f.Key, bounds.A, bounds.B, v)
	}

	return nil
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	bounded := func(k string, v any, lower, upper float64, desc string) {
		register(k, v, desc)
		field := Default[k]
		field.Bounds = mo.Some(lo.T2(lower, upper))
		Default[k] = field
	}

	bounded(key.LoopPollIntervalMs, 100, 10, 1000, "How often the loop end is checked, in milliseconds.\nLower values overshoot less at high playback speeds")
	bounded(key.LoopRepSpacingMs, 500, 0, 5000, "Minimum time between two counted loop repetitions, in milliseconds")
	bounded(key.ProgressiveRepsPerStep, 3, 1, 20, "Repetitions at one speed before progressive training speeds up. From 1 to 20")
	bounded(key.ProgressiveSpeedStep, 0.05, 0.01, 0.25, "Speed increment applied by progressive training. From 0.01 to 0.25")
	bounded(key.ProgressiveTargetSpeed, 1.0, 0.25, 2, "Speed at which progressive training stops. From 0.25 to 2.0")
	bounded(key.PracticeAutosaveIntervalS, 30, 1, 3600, "Interval between practice log saves while playing, in seconds")
	bounded(key.PracticeRetentionDays, 30, 1, 3650, "Days of practice history kept in the log")
	register(key.PracticeStreakDisplayMin, 3, "Smallest streak shown in the practice dashboard")
	bounded(key.MetronomeBPM, 120, 20, 300, "Default metronome tempo. From 20 to 300")
	register(key.MetronomeTimeSignature, "4/4", "Default time signature.\nAvailable options are: 2/4, 3/4, 4/4, 5/4, 6/8, 7/8")
	bounded(key.MetronomeVolume, 0.7, 0, 1, "Click volume. From 0 to 1")
	bounded(key.MetronomeLookaheadMs, 25, 5, 500, "How often the metronome scheduler wakes up, in milliseconds")
	bounded(key.MetronomeScheduleAheadMs, 100, 10, 1000, "How far ahead clicks are scheduled, in milliseconds")
	bounded(key.MetronomeSampleRate, 44100, 8000, 192000, "Audio output sample rate")
	bounded(key.MetronomeAudioBufferMs, 20, 1, 500, "Audio output buffer length, in milliseconds")
	register(key.Player, "mpv", "Media player used for playback")
	bounded(key.PlayerSeekStep, 5, 1, 60, "Seconds skipped by the seek keys")
	register(key.StoreBackend, "gache", "Where practice data is stored.\nAvailable options are: gache (json file), sqlite, memory")
	register(key.MetadataFetchTitles, true, "Fetch video titles from YouTube when adding videos")
	register(key.ShareBaseURL, "https://www.youtube.com/watch", "Base URL for share links")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares, nerd (nerd-font required)")
	register(key.TUIItemSpacing, 1, "Spacing between items in the TUI")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Check for a newer release when showing help")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}{{ with .RangeText }}
{{ blue "Range:" }}   {{ . }}{{ end }}`))
