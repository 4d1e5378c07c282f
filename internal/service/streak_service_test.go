package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"spottr/internal/models"
	"spottr/internal/repository"
	"spottr/internal/streak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreakService_RecordActivityScenario(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "runner")
	ctx := t.Context()

	p, outcome, err := env.streak.RecordActivity(ctx, user.ID, date(2026, 10, 1).Add(9*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, streak.Started, outcome)
	assert.Equal(t, 1, p.CurrentStreak)

	_, outcome, err = env.streak.RecordActivity(ctx, user.ID, date(2026, 10, 1).Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, streak.Noop, outcome)

	p, outcome, err = env.streak.RecordActivity(ctx, user.ID, date(2026, 10, 2))
	require.NoError(t, err)
	assert.Equal(t, streak.Extended, outcome)
	assert.Equal(t, 2, p.CurrentStreak)

	p, outcome, err = env.streak.RecordActivity(ctx, user.ID, date(2026, 10, 4))
	require.NoError(t, err)
	assert.Equal(t, streak.Reset, outcome)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 2, p.LongestStreak)

	stored := env.profile(t, user.ID)
	assert.Equal(t, 1, stored.CurrentStreak)
	assert.Equal(t, 2, stored.LongestStreak)
	require.NotNil(t, stored.LastWorkoutDate)
	assert.True(t, date(2026, 10, 4).Equal(stored.LastWorkoutDate.UTC()))
}

func TestStreakService_ConcurrentSameDayCountsOnce(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "twice")
	day := date(2026, 10, 14)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.streak.RecordActivity(context.Background(), user.ID, day)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p := env.profile(t, user.ID)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
}

func TestStreakService_RecordActivityAdvancesGroups(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	group := &models.Group{Name: "Crew", CreatorID: alice.ID, JoinCode: "CREW0001"}
	require.NoError(t, env.groups.Create(ctx, group, []uint{bob.ID}))

	_, _, err := env.streak.RecordActivity(ctx, alice.ID, date(2026, 10, 1))
	require.NoError(t, err)
	g, err := env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	require.NotNil(t, g.Streak)
	assert.Equal(t, 1, g.Streak.CurrentStreak)
	assert.Equal(t, 1, g.Streak.ActiveMembers)

	_, _, err = env.streak.RecordActivity(ctx, bob.ID, date(2026, 10, 1))
	require.NoError(t, err)
	g, err = env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Streak.CurrentStreak)
	assert.Equal(t, 2, g.Streak.ActiveMembers)

	_, _, err = env.streak.RecordActivity(ctx, alice.ID, date(2026, 10, 2))
	require.NoError(t, err)
	g, err = env.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Streak.CurrentStreak)
	assert.Equal(t, 2, g.Streak.BestStreak)
}

type failingUserRepo struct {
	repository.UserRepository
}

func (failingUserRepo) UpdateStreak(context.Context, uint, func(*models.Profile) (bool, error)) (*models.Profile, error) {
	return nil, models.NewInternalError(errors.New("connection reset"))
}

func TestStreakService_RecordActivitySurfacesStoreErrors(t *testing.T) {
	svc := NewStreakService(nil, failingUserRepo{}, nil, nil, nil, nil, time.Monday)

	_, outcome, err := svc.RecordActivity(t.Context(), 1, date(2026, 10, 1))
	require.Error(t, err)
	assert.Equal(t, streak.Noop, outcome)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInternal, appErr.Code)
}

func TestStreakService_IsStreakActive(t *testing.T) {
	svc := &StreakService{}
	today := date(2026, 10, 14)

	assert.False(t, svc.IsStreakActive(nil, today))
	assert.False(t, svc.IsStreakActive(&models.Profile{}, today))
	assert.True(t, svc.IsStreakActive(&models.Profile{LastWorkoutDate: ptr(today)}, today))
	assert.True(t, svc.IsStreakActive(&models.Profile{LastWorkoutDate: ptr(date(2026, 10, 13))}, today))
	assert.False(t, svc.IsStreakActive(&models.Profile{LastWorkoutDate: ptr(date(2026, 10, 12))}, today))
}

func TestStreakService_Overview(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	user := env.createUser(t, "weekly")

	for _, at := range []time.Time{
		time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC), // previous week
		time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC),
	} {
		post := models.NewPost(user.ID, "hi", models.GeneralBody{})
		post.CreatedAt = at
		require.NoError(t, env.posts.Create(ctx, post))
	}
	env.completedWorkouts(t, user.ID, 1, time.Date(2026, 10, 13, 7, 0, 0, 0, time.UTC))
	env.completedWorkouts(t, user.ID, 1, time.Date(2026, 10, 1, 7, 0, 0, 0, time.UTC))
	env.setStreak(t, user.ID, 3, ptr(date(2026, 10, 13)))

	ov, err := env.streak.Overview(ctx, user.ID)
	require.NoError(t, err)

	assert.True(t, ov.StreakActive)
	assert.Equal(t, int64(1), ov.WeeklyWorkouts)
	assert.Equal(t, int64(2), ov.WeeklyPostCount)
	require.Len(t, ov.WeekDays, 7)
	assert.Equal(t, "Mon", ov.WeekDays[0].DayName)
	assert.Equal(t, "Sun", ov.WeekDays[6].DayName)

	var active, today []string
	for _, d := range ov.WeekDays {
		if d.HasActivity {
			active = append(active, d.DayName)
		}
		if d.IsToday {
			today = append(today, d.DayName)
		}
	}
	assert.Equal(t, []string{"Mon", "Wed"}, active)
	assert.Equal(t, []string{"Wed"}, today)
}

func TestStreakService_WeekStart(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, date(2026, 10, 12), env.streak.WeekStart())

	env.streak.weekStart = time.Sunday
	assert.Equal(t, date(2026, 10, 11), env.streak.WeekStart())
}
