// Package clock defines the two independent time sources used by the practice engine.
//
// Wall time drives timers, day keys and debouncing. Audio time drives click scheduling and
// is measured in seconds of rendered audio. The two are never converted into each other.
package clock

import "time"

// Wall is a wall-clock source.
type Wall interface {
	Now() time.Time
	// AfterFunc runs f once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was still pending.
	Stop() bool
}

// Audio is a monotonic audio-clock source, in seconds.
type Audio interface {
	Now() float64
}

// System is the process wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// DayKey formats t as the calendar-day key used by the practice log.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Millis returns t as milliseconds since the Unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
