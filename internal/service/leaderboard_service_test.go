package service

import (
	"testing"
	"time"

	"spottr/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryIDs(entries []LeaderboardEntry) []uint {
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.User.ID)
	}
	return ids
}

func TestLeaderboardService_RankCohortOrdering(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "a")
	b := env.createUser(t, "b")
	c := env.createUser(t, "c")
	d := env.createUser(t, "d")
	env.setStreak(t, a.ID, 3, ptr(date(2026, 10, 13)))
	env.setStreak(t, b.ID, 10, ptr(date(2026, 10, 14)))
	env.setStreak(t, c.ID, 3, ptr(date(2026, 10, 14)))

	entries, err := env.leaderboard.RankCohort(t.Context(), []uint{d.ID, c.ID, a.ID, b.ID, a.ID, 9999}, c.ID)
	require.NoError(t, err)

	assert.Equal(t, []uint{b.ID, a.ID, c.ID, d.ID}, entryIDs(entries))
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		assert.Equal(t, e.User.ID == c.ID, e.IsViewer)
	}
	assert.Equal(t, 10, entries[0].Streak)
	assert.Equal(t, 0, entries[3].Streak)
}

func TestLeaderboardService_RankCohortCountsAndLevels(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "lifter")
	env.completedWorkouts(t, user.ID, 2, time.Date(2026, 10, 13, 6, 0, 0, 0, time.UTC))
	env.completedWorkouts(t, user.ID, 3, time.Date(2026, 9, 20, 6, 0, 0, 0, time.UTC))
	// Not completed, so ignored everywhere.
	require.NoError(t, env.workouts.Create(t.Context(), &models.Workout{
		UserID: user.ID, Name: "open", StartedAt: time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC),
	}))

	entries, err := env.leaderboard.RankCohort(t.Context(), []uint{user.ID}, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].WeeklyWorkouts)
	assert.Equal(t, 5, entries[0].Level)
}

func TestLeaderboardService_EmptyCohort(t *testing.T) {
	env := newTestEnv(t)

	entries, err := env.leaderboard.RankCohort(t.Context(), nil, 1)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLeaderboardService_FriendsTab(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	viewer := env.createUser(t, "viewer")
	friend := env.createUser(t, "friend")
	followed := env.createUser(t, "followed")
	pending := env.createUser(t, "pending")
	stranger := env.createUser(t, "stranger")
	_ = stranger

	fs := &models.Friendship{FromUserID: viewer.ID, ToUserID: friend.ID}
	require.NoError(t, env.friends.Create(ctx, fs))
	require.NoError(t, env.friends.Accept(ctx, fs.ID))
	require.NoError(t, env.friends.Create(ctx, &models.Friendship{FromUserID: pending.ID, ToUserID: viewer.ID}))
	require.NoError(t, env.friends.CreateFollow(ctx, &models.Follow{FollowerID: viewer.ID, FollowingID: followed.ID}))
	env.setStreak(t, followed.ID, 4, ptr(date(2026, 10, 14)))

	board, err := env.leaderboard.Leaderboard(ctx, viewer.ID, TabFriends)
	require.NoError(t, err)
	assert.Equal(t, TabFriends, board.Tab)
	assert.Nil(t, board.Gym)
	assert.Equal(t, []uint{followed.ID, viewer.ID, friend.ID}, entryIDs(board.Entries))
	require.NotNil(t, board.Viewer)
	assert.Equal(t, 2, board.Viewer.Rank)
}

func TestLeaderboardService_GymTab(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	viewer := env.createUser(t, "viewer")
	mate := env.createUser(t, "mate")
	other := env.createUser(t, "other")

	board, err := env.leaderboard.Leaderboard(ctx, viewer.ID, TabGym)
	require.NoError(t, err)
	assert.Nil(t, board.Gym)
	assert.Empty(t, board.Entries)
	assert.Nil(t, board.Viewer)

	gym := env.createGym(t, "Iron Temple")
	elsewhere := env.createGym(t, "Elsewhere")
	require.NoError(t, env.gyms.Join(ctx, viewer.ID, gym.ID))
	require.NoError(t, env.gyms.Join(ctx, mate.ID, gym.ID))
	require.NoError(t, env.gyms.Join(ctx, other.ID, elsewhere.ID))
	env.setStreak(t, mate.ID, 6, ptr(date(2026, 10, 14)))

	board, err = env.leaderboard.Leaderboard(ctx, viewer.ID, "bogus")
	require.NoError(t, err)
	assert.Equal(t, TabGym, board.Tab)
	require.NotNil(t, board.Gym)
	assert.Equal(t, "Iron Temple", board.Gym.Name)
	assert.Equal(t, []uint{mate.ID, viewer.ID}, entryIDs(board.Entries))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, dedupe([]uint{3, 1, 3, 2, 1}))
	assert.Empty(t, dedupe(nil))
}
