package repository

import (
	"testing"
	"time"

	"spottr/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addWorkout(t *testing.T, db *gorm.DB, userID, exerciseID uint, completed bool, sets ...models.WorkoutSet) *models.Workout {
	t.Helper()
	for i := range sets {
		sets[i].SetNumber = i + 1
	}
	w := &models.Workout{
		UserID:    userID,
		Name:      "Workout",
		StartedAt: time.Now().UTC(),
		Completed: completed,
		Exercises: []models.WorkoutExercise{{ExerciseID: exerciseID, Sets: sets}},
	}
	require.NoError(t, NewWorkoutRepository(db).Create(t.Context(), w))
	return w
}

func TestStatsRepository_UserTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatsRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "agg")
	other := createUser(t, db, "someone")
	squat := createExercise(t, db, "Squat")

	t.Run("empty user sums to zero", func(t *testing.T) {
		totals, err := repo.UserTotals(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, UserTotals{}, *totals)
	})

	addWorkout(t, db, u.ID, squat.ID, true,
		models.WorkoutSet{Weight: ptr(100.0), Completed: true},
		models.WorkoutSet{Weight: ptr(110.0), Completed: true},
		models.WorkoutSet{Weight: ptr(120.0), Completed: false},
	)
	addWorkout(t, db, u.ID, squat.ID, true,
		models.WorkoutSet{Completed: true},
		models.WorkoutSet{Weight: ptr(60.5), Completed: true},
	)
	// Unfinished workouts never count, even with completed sets.
	addWorkout(t, db, u.ID, squat.ID, false,
		models.WorkoutSet{Weight: ptr(500.0), Completed: true},
	)
	addWorkout(t, db, other.ID, squat.ID, true,
		models.WorkoutSet{Weight: ptr(999.0), Completed: true},
	)

	totals, err := repo.UserTotals(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalWorkouts)
	assert.Equal(t, int64(4), totals.TotalSets)
	assert.InDelta(t, 270.5, totals.TotalWeight, 0.001)
}

func TestStatsRepository_WorkoutTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatsRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "wt")
	squat := createExercise(t, db, "Squat")
	bench := createExercise(t, db, "Bench Press")

	w := addWorkout(t, db, u.ID, squat.ID, false,
		models.WorkoutSet{Weight: ptr(100.0), Completed: true},
		models.WorkoutSet{Weight: ptr(50.0), Completed: false},
	)
	_, err := NewWorkoutRepository(db).AddExercise(ctx, w.ID, bench.ID, 2)
	require.NoError(t, err)

	totals, err := repo.WorkoutTotals(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.ExerciseCount)
	assert.Equal(t, int64(1), totals.SetCount)
	assert.InDelta(t, 100.0, totals.TotalWeightLifted, 0.001)

	empty, err := repo.WorkoutTotals(ctx, 9999)
	require.NoError(t, err)
	assert.Equal(t, WorkoutTotals{}, *empty)
}

func TestStatsRepository_PostCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatsRepository(db)
	posts := NewPostRepository(db)
	ctx := t.Context()

	author := createUser(t, db, "author")
	post := models.NewPost(author.ID, "hello", models.GeneralBody{})
	require.NoError(t, posts.Create(ctx, post))

	for i, rt := range []models.ReactionType{models.ReactionHeart, models.ReactionHeart, models.ReactionFire} {
		u := createUser(t, db, "reactor"+string(rune('a'+i)))
		require.NoError(t, posts.SaveReaction(ctx, &models.Reaction{UserID: u.ID, PostID: post.ID, ReactionType: rt}))
	}
	require.NoError(t, NewCommentRepository(db).Create(ctx, &models.Comment{UserID: author.ID, PostID: post.ID, Content: "first"}))

	counts, err := repo.PostCounts(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, PostCounts{Heart: 2, Fire: 1, Comments: 1}, *counts)
}

func TestStatsRepository_CompletedWorkoutCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatsRepository(db)

	a := createUser(t, db, "counta")
	b := createUser(t, db, "countb")
	c := createUser(t, db, "countc")
	squat := createExercise(t, db, "Squat")

	addWorkout(t, db, a.ID, squat.ID, true)
	addWorkout(t, db, a.ID, squat.ID, true)
	addWorkout(t, db, a.ID, squat.ID, false)
	addWorkout(t, db, b.ID, squat.ID, true)

	counts, err := repo.CompletedWorkoutCounts(t.Context(), []uint{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{a.ID: 2, b.ID: 1}, counts)

	empty, err := repo.CompletedWorkoutCounts(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStatsRepository_WeekTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatsRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "weekly")
	squat := createExercise(t, db, "Squat")
	monday := day(2026, time.October, 12)

	inside := addWorkout(t, db, u.ID, squat.ID, true,
		models.WorkoutSet{Completed: true},
		models.WorkoutSet{Completed: true},
		models.WorkoutSet{Completed: false},
	)
	before := addWorkout(t, db, u.ID, squat.ID, true, models.WorkoutSet{Completed: true})
	require.NoError(t, db.Model(inside).Updates(map[string]interface{}{
		"started_at": monday.Add(9 * time.Hour), "duration_minutes": 45,
	}).Error)
	require.NoError(t, db.Model(before).Updates(map[string]interface{}{
		"started_at": monday.Add(-time.Hour), "duration_minutes": 30,
	}).Error)

	totals, err := repo.WeekTotals(ctx, u.ID, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, WeekTotals{Workouts: 1, Sets: 2, DurationMinutes: 45}, *totals)
}
