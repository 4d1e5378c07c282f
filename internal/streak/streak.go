// Package streak holds the calendar-day rules behind user and group streaks.
// All dates are UTC calendar dates.
package streak

import (
	"time"

	"spottr/internal/models"
)

// Outcome describes what recording an activity did to a streak.
type Outcome string

const (
	// Noop means activity was already recorded for that day.
	Noop     Outcome = "noop"
	Started  Outcome = "started"
	Extended Outcome = "extended"
	Reset    Outcome = "reset"
)

// Changed reports whether the outcome modified the streak.
func (o Outcome) Changed() bool {
	return o != Noop
}

// DateOf truncates t to midnight of its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// next applies the day rule to a counter whose last active date is last.
func next(current int, last *time.Time, day time.Time) (int, Outcome) {
	if last == nil {
		return 1, Started
	}
	prev := DateOf(*last)
	switch {
	case prev.Equal(day):
		return current, Noop
	case prev.AddDate(0, 0, 1).Equal(day):
		return current + 1, Extended
	default:
		return 1, Reset
	}
}

// Apply records activity on day for the profile. The same day is a no-op,
// the day after the last activity extends the streak and anything else
// restarts it at 1. LongestStreak never drops below CurrentStreak.
func Apply(p *models.Profile, day time.Time) Outcome {
	day = DateOf(day)
	current, outcome := next(p.CurrentStreak, p.LastWorkoutDate, day)
	if outcome == Noop {
		return Noop
	}
	p.CurrentStreak = current
	p.LastWorkoutDate = &day
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	return outcome
}

// ApplyGroup records member activity on day for a group streak. The day rule
// matches Apply. ActiveMembers is refreshed on every call.
func ApplyGroup(s *models.GroupStreak, day time.Time, activeMembers int) Outcome {
	day = DateOf(day)
	current, outcome := next(s.CurrentStreak, s.LastActiveDate, day)
	s.ActiveMembers = activeMembers
	if outcome == Noop {
		return Noop
	}
	s.CurrentStreak = current
	s.LastActiveDate = &day
	if s.CurrentStreak > s.BestStreak {
		s.BestStreak = s.CurrentStreak
	}
	return outcome
}

// IsActive reports whether a streak last extended on last is still shown as
// active on today: true when last is today or yesterday.
func IsActive(last *time.Time, today time.Time) bool {
	if last == nil {
		return false
	}
	prev := DateOf(*last)
	today = DateOf(today)
	return prev.Equal(today) || prev.AddDate(0, 0, 1).Equal(today)
}

// WeekStart returns midnight UTC of the most recent start weekday on or
// before now.
func WeekStart(now time.Time, start time.Weekday) time.Time {
	today := DateOf(now)
	back := (int(today.Weekday()) - int(start) + 7) % 7
	return today.AddDate(0, 0, -back)
}

// Level maps lifetime completed workouts onto the level staircase.
func Level(totalWorkouts int64) int {
	switch {
	case totalWorkouts >= 500:
		return 50
	case totalWorkouts >= 200:
		return 40
	case totalWorkouts >= 100:
		return 30
	case totalWorkouts >= 50:
		return 20
	case totalWorkouts >= 20:
		return 10
	case totalWorkouts >= 5:
		return 5
	}
	return 1
}
