package repository

import (
	"regexp"
	"testing"
	"time"

	"spottr/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkoutRepository_CountCompletedBetween_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkoutRepository(db)

	from := day(2026, 10, 12)
	to := from.Add(36 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "workouts" WHERE user_id = $1 AND completed = $2 AND started_at >= $3 AND started_at <= $4`)).
		WithArgs(7, true, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountCompletedBetween(t.Context(), 7, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkoutRepository_WeekWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "lifter")
	other := createUser(t, db, "other")
	weekStart := day(2026, 10, 12)
	now := weekStart.Add(50 * time.Hour)

	for _, w := range []models.Workout{
		{UserID: u.ID, StartedAt: weekStart.Add(-time.Second), Completed: true},
		{UserID: u.ID, StartedAt: weekStart, Completed: true},
		{UserID: u.ID, StartedAt: weekStart.Add(24 * time.Hour), Completed: true},
		{UserID: u.ID, StartedAt: weekStart.Add(25 * time.Hour), Completed: false},
		{UserID: u.ID, StartedAt: now.Add(time.Hour), Completed: true},
		{UserID: other.ID, StartedAt: weekStart.Add(time.Hour), Completed: true},
	} {
		w.Name = "Workout"
		require.NoError(t, repo.Create(ctx, &w))
	}

	count, err := repo.CountCompletedBetween(ctx, u.ID, weekStart, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	counts, err := repo.CountCompletedBetweenByUser(ctx, []uint{u.ID, other.ID, 999}, weekStart, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[u.ID])
	assert.Equal(t, int64(1), counts[other.ID])
	_, ok := counts[999]
	assert.False(t, ok)
}

func TestWorkoutRepository_ExercisesAndSets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "builder")
	squat := createExercise(t, db, "Squat")
	bench := createExercise(t, db, "Bench Press")

	workout := &models.Workout{UserID: u.ID, Name: "Legs", StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, workout))

	first, err := repo.AddExercise(ctx, workout.ID, squat.ID, models.DefaultSets)
	require.NoError(t, err)
	second, err := repo.AddExercise(ctx, workout.ID, bench.ID, models.DefaultSets)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	set, err := repo.AddSet(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, set.SetNumber)

	set.Reps = ptr(5)
	set.Weight = ptr(100.0)
	set.Completed = true
	require.NoError(t, repo.UpdateSet(ctx, set))

	owner, err := repo.OwnerOfSet(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner)

	_, err = repo.OwnerOfSet(ctx, 9999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	loaded, err := repo.GetByID(ctx, workout.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Exercises, 2)
	assert.Equal(t, "Squat", loaded.Exercises[0].Exercise.Name)
	require.Len(t, loaded.Exercises[0].Sets, 4)
	for i, s := range loaded.Exercises[0].Sets {
		assert.Equal(t, i+1, s.SetNumber)
	}
	assert.True(t, loaded.Exercises[0].Sets[3].Completed)
}

func TestWorkoutRepository_CompleteAndPostAreOneShot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "finisher")
	workout := &models.Workout{UserID: u.ID, Name: "Push", StartedAt: day(2026, 10, 14)}
	require.NoError(t, repo.Create(ctx, workout))

	done := day(2026, 10, 14).Add(45 * time.Minute)
	changed, err := repo.Complete(ctx, workout.ID, done, 45)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Complete(ctx, workout.ID, done.Add(time.Hour), 105)
	require.NoError(t, err)
	assert.False(t, changed)

	loaded, err := repo.GetByID(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, loaded.DurationMinutes)

	posted, err := repo.MarkPosted(ctx, workout.ID)
	require.NoError(t, err)
	assert.True(t, posted)
	posted, err = repo.MarkPosted(ctx, workout.ID)
	require.NoError(t, err)
	assert.False(t, posted)
}

func TestWorkoutRepository_Templates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "planner")
	squat := createExercise(t, db, "Squat")
	lunge := createExercise(t, db, "Lunge")

	tmpl := &models.WorkoutTemplate{
		UserID: u.ID,
		Name:   "Leg Day",
		Exercises: []models.TemplateExercise{
			{ExerciseID: lunge.ID, Order: 1, DefaultSets: 2, DefaultReps: 12},
			{ExerciseID: squat.ID, Order: 0, DefaultSets: 5, DefaultReps: 5, DefaultWeight: ptr(80.0)},
		},
	}
	require.NoError(t, repo.CreateTemplate(ctx, tmpl))

	loaded, err := repo.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Exercises, 2)
	assert.Equal(t, "Squat", loaded.Exercises[0].Exercise.Name)
	assert.Equal(t, 60, loaded.EstimatedDuration)

	workout := &models.Workout{UserID: u.ID, Name: "Leg Day", TemplateID: &tmpl.ID, StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, workout))

	require.NoError(t, repo.TouchTemplate(ctx, tmpl.ID, day(2026, 10, 15)))
	list, err := repo.ListTemplates(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].LastUsed)

	require.NoError(t, repo.DeleteTemplate(ctx, tmpl.ID))
	_, err = repo.GetTemplate(ctx, tmpl.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	kept, err := repo.GetByID(ctx, workout.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.TemplateID)
}

func TestWorkoutRepository_BestPersonalRecords(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "pr")
	squat := createExercise(t, db, "Squat")
	dead := createExercise(t, db, "Deadlift")

	for _, pr := range []models.PersonalRecord{
		{UserID: u.ID, ExerciseID: squat.ID, Weight: 140, Reps: 1, AchievedAt: day(2026, 9, 1)},
		{UserID: u.ID, ExerciseID: squat.ID, Weight: 150, Reps: 1, AchievedAt: day(2026, 10, 1)},
		{UserID: u.ID, ExerciseID: dead.ID, Weight: 200, Reps: 1, AchievedAt: day(2026, 10, 2)},
	} {
		require.NoError(t, repo.CreatePersonalRecord(ctx, &pr))
	}

	best, err := repo.BestPersonalRecords(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, 150.0, best[0].Weight)
	assert.Equal(t, "Deadlift", best[1].Exercise.Name)
}

func TestWorkoutRepository_UpsertExercises(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db)
	ctx := t.Context()

	defs := []models.ExerciseDefinition{
		{Name: "Plank", Category: models.CategoryCore, ExerciseType: models.ExerciseTypeStrength},
		{Name: "Rowing", Category: models.CategoryCardio, ExerciseType: models.ExerciseTypeCardio},
	}
	require.NoError(t, repo.UpsertExercises(ctx, defs))
	require.NoError(t, repo.UpsertExercises(ctx, []models.ExerciseDefinition{
		{Name: "Plank", Category: models.CategoryCore, ExerciseType: models.ExerciseTypeCardio},
	}))

	list, err := repo.ListExercises(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Rowing", list[0].Name)
	assert.Equal(t, models.ExerciseTypeCardio, list[1].ExerciseType)
}

func TestWorkoutRepository_ActiveAndHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db)
	ctx := t.Context()

	u := createUser(t, db, "historian")

	active, err := repo.GetActive(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	base := day(2026, 10, 1)
	for i, completed := range []bool{true, true, false, true} {
		w := &models.Workout{UserID: u.ID, Name: "Workout", StartedAt: base.AddDate(0, 0, i), Completed: completed}
		require.NoError(t, repo.Create(ctx, w))
	}

	active, err = repo.GetActive(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.False(t, active.Completed)
	assert.True(t, active.StartedAt.Equal(base.AddDate(0, 0, 2)))

	recent, err := repo.ListCompleted(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].StartedAt.Equal(base.AddDate(0, 0, 3)))
	assert.True(t, recent[1].StartedAt.Equal(base.AddDate(0, 0, 1)))

	starts, err := repo.CompletedStartsBetween(ctx, u.ID, base, base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, starts, 2)
	assert.True(t, starts[0].Equal(base))
}
