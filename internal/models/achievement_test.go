package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAchievementProgressPercent(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		req      int
		want     int
	}{
		{"zero requirement", 0, 0, 100},
		{"half way", 3, 7, 42},
		{"done", 7, 7, 100},
		{"overshoot capped", 12, 7, 100},
		{"nothing yet", 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ua := UserAchievement{Progress: tt.progress, Achievement: Achievement{RequirementValue: tt.req}}
			assert.Equal(t, tt.want, ua.ProgressPercent())
		})
	}
}

func TestBusyLevelFromReport(t *testing.T) {
	want := map[int]BusyLevel{1: BusyLow, 2: BusyLow, 3: BusyModerate, 4: BusyHigh, 5: BusyVeryHigh}
	for in, exp := range want {
		got, ok := BusyLevelFromReport(in)
		assert.True(t, ok)
		assert.Equal(t, exp, got)
	}
	_, ok := BusyLevelFromReport(0)
	assert.False(t, ok)
	_, ok = BusyLevelFromReport(6)
	assert.False(t, ok)
}

func TestGymTopLifterBeforeSaveTotals(t *testing.T) {
	l := &GymTopLifter{SquatMax: 405, BenchMax: 315, DeadliftMax: 500}
	assert.NoError(t, l.BeforeSave(nil))
	assert.Equal(t, 1220, l.Total)
}
