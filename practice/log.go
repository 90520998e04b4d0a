package practice

import (
	"slices"
	"time"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/store"
	"github.com/samber/lo"
)

// StoreKey is the store key holding the practice log.
const StoreKey = "practiceLog"

const dayLayout = "2006-01-02"

// Log maps a local calendar day (YYYY-MM-DD) to fractional minutes practiced.
type Log map[string]float64

// LoadLog reads the log from kv. A missing or corrupt log is empty.
func LoadLog(kv store.KV) Log {
	l := make(Log)
	if !store.LoadJSON(kv, StoreKey, &l) || l == nil {
		return make(Log)
	}

	return l
}

// Save writes the log to kv.
func (l Log) Save(kv store.KV) error {
	return store.SaveJSON(kv, StoreKey, l)
}

// Minutes returns the minutes logged on the day of t.
func (l Log) Minutes(t time.Time) float64 {
	return l[clock.DayKey(t)]
}

// Add adds minutes to the day of t.
func (l Log) Add(t time.Time, minutes float64) {
	l[clock.DayKey(t)] += minutes
}

// Prune drops days that lie more than retentionDays before now. Unparseable keys are dropped too.
func (l Log) Prune(now time.Time, retentionDays int) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	for key := range l {
		day, err := time.ParseInLocation(dayLayout, key, now.Location())
		if err != nil || day.Before(cutoff) {
			delete(l, key)
		}
	}
}

func (l Log) practiced(t time.Time) bool {
	return l.Minutes(t) > 0
}

// Streak counts consecutive practiced days ending today, or ending yesterday when
// today has nothing yet. practicingToday counts today even before anything is logged.
func (l Log) Streak(now time.Time, practicingToday bool) int {
	day := now
	if !practicingToday && !l.practiced(day) {
		day = day.AddDate(0, 0, -1)
		if !l.practiced(day) {
			return 0
		}
	}

	streak := 1
	for {
		day = day.AddDate(0, 0, -1)
		if !l.practiced(day) {
			return streak
		}
		streak++
	}
}

// Day is one entry of a history listing.
type Day struct {
	Day     string  `json:"day"`
	Minutes float64 `json:"minutes"`
}

// History returns the last n days ending with the day of now, oldest first. Days without practice are included.
func (l Log) History(now time.Time, n int) []Day {
	days := make([]Day, 0, n)
	for i := n - 1; i >= 0; i-- {
		t := now.AddDate(0, 0, -i)
		days = append(days, Day{Day: clock.DayKey(t), Minutes: l.Minutes(t)})
	}

	return days
}

// Total sums the minutes of the last n days ending with the day of now.
func (l Log) Total(now time.Time, n int) float64 {
	var total float64
	for _, d := range l.History(now, n) {
		total += d.Minutes
	}

	return total
}

// Best returns the day with the most minutes, the latest one on a tie. Days without
// any minutes are never best, so ok is false when no day has been practiced.
func (l Log) Best() (day Day, ok bool) {
	days := lo.Keys(l)
	slices.Sort(days)

	for _, key := range days {
		if minutes := l[key]; minutes > 0 && minutes >= day.Minutes {
			day = Day{Day: key, Minutes: minutes}
			ok = true
		}
	}

	return day, ok
}
