package service

import (
	"fmt"

	"spottr/internal/models"
)

// StreakIcon returns the badge shown next to a streak count.
func StreakIcon(days int) string {
	switch {
	case days >= 30:
		return "🔥"
	case days >= 14:
		return "⚡"
	case days >= 7:
		return "💪"
	case days >= 1:
		return "✨"
	}
	return "💤"
}

// RankSuffix renders a rank as an English ordinal. Ranks ending in 10-20
// always take "th".
func RankSuffix(rank int) string {
	suffix := "th"
	if r := rank % 100; r < 10 || r > 20 {
		switch rank % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", rank, suffix)
}

// FormatDuration renders minutes as "45m", "2h" or "1h 5m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// BusyLabel describes a gym busy level for display.
func BusyLabel(level models.BusyLevel) string {
	switch level {
	case models.BusyLow:
		return "Not Crowded"
	case models.BusyModerate:
		return "Moderately Crowded"
	case models.BusyHigh:
		return "Very Crowded"
	case models.BusyVeryHigh:
		return "At Capacity"
	}
	return "Unknown"
}
