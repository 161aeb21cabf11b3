package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returning defaultDuration on error
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// WithinWindow reports whether t falls inside the named recency window
// (today, week, month, year) relative to now. "all" and "" match everything.
func WithinWindow(t, now time.Time, window string) bool {
	switch window {
	case "today":
		y, m, d := now.Date()
		return !t.Before(time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
	case "week":
		return !t.Before(now.AddDate(0, 0, -7))
	case "month":
		return !t.Before(now.AddDate(0, -1, 0))
	case "year":
		return !t.Before(now.AddDate(-1, 0, 0))
	default:
		return true
	}
}
