package practice

import "time"

// Stats summarizes the practice log for display.
type Stats struct {
	Streak      int     `json:"streak"`
	Today       float64 `json:"today"`
	Week        float64 `json:"week"`
	Month       float64 `json:"month"`
	BestDay     string  `json:"bestDay,omitempty"`
	BestMinutes float64 `json:"bestMinutes,omitempty"`
	Days        []Day   `json:"days"`
}

// Summarize computes Stats for the log as of now, listing the last historyDays days.
func Summarize(l Log, now time.Time, historyDays int) Stats {
	stats := Stats{
		Streak: l.Streak(now, false),
		Today:  l.Minutes(now),
		Week:   l.Total(now, 7),
		Month:  l.Total(now, 30),
		Days:   l.History(now, historyDays),
	}

	if best, ok := l.Best(); ok {
		stats.BestDay = best.Day
		stats.BestMinutes = best.Minutes
	}

	return stats
}
