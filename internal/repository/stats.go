package repository

import (
	"context"
	"time"

	"spottr/internal/models"
	"spottr/internal/observability"

	"gorm.io/gorm"
)

// UserTotals are the workout aggregates of one user.
type UserTotals struct {
	TotalWorkouts int64
	TotalSets     int64
	TotalWeight   float64
}

// WorkoutTotals are the aggregates of one workout.
type WorkoutTotals struct {
	ExerciseCount     int64
	SetCount          int64
	TotalWeightLifted float64
}

// PostCounts are the reaction and comment counts of one post.
type PostCounts struct {
	Heart    int64 `json:"heart"`
	ThumbsUp int64 `json:"thumbsup"`
	Flex     int64 `json:"flex"`
	Fire     int64 `json:"fire"`
	Comments int64 `json:"comments"`
}

// WeekTotals summarize the completed workouts of one user inside a window.
type WeekTotals struct {
	Workouts        int64 `json:"weekly_count"`
	Sets            int64 `json:"weekly_sets"`
	DurationMinutes int64 `json:"weekly_duration"`
}

// StatsRepository computes aggregates directly from the stored rows. Results
// are never cached.
type StatsRepository interface {
	UserTotals(ctx context.Context, userID uint) (*UserTotals, error)
	WorkoutTotals(ctx context.Context, workoutID uint) (*WorkoutTotals, error)
	PostCounts(ctx context.Context, postID uint) (*PostCounts, error)
	CompletedWorkoutCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error)
	WeekTotals(ctx context.Context, userID uint, from, to time.Time) (*WeekTotals, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a new StatsRepository implementation.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// completedSets scopes workout_sets to completed sets of completed workouts
// owned by userID.
func completedSets(db *gorm.DB, userID uint) *gorm.DB {
	return db.Table("workout_sets").
		Joins("JOIN workout_exercises ON workout_exercises.id = workout_sets.workout_exercise_id").
		Joins("JOIN workouts ON workouts.id = workout_exercises.workout_id").
		Where("workouts.user_id = ? AND workouts.completed = ? AND workout_sets.completed = ?", userID, true, true)
}

func (r *statsRepository) UserTotals(ctx context.Context, userID uint) (*UserTotals, error) {
	ctx, span := observability.StartQuerySpan(ctx, r.db.Dialector.Name(), "workouts", "UserTotals")
	defer span.End()
	defer observability.TrackQuery("aggregate", "workouts")()

	db := conn(ctx, r.db)
	var totals UserTotals
	if err := db.Model(&models.Workout{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&totals.TotalWorkouts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var sets struct {
		Sets   int64
		Weight float64
	}
	if err := completedSets(db, userID).
		Select("COUNT(workout_sets.id) AS sets, COALESCE(SUM(workout_sets.weight), 0) AS weight").
		Scan(&sets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	totals.TotalSets = sets.Sets
	totals.TotalWeight = sets.Weight
	return &totals, nil
}

func (r *statsRepository) WorkoutTotals(ctx context.Context, workoutID uint) (*WorkoutTotals, error) {
	db := conn(ctx, r.db)
	var totals WorkoutTotals
	if err := db.Model(&models.WorkoutExercise{}).
		Where("workout_id = ?", workoutID).
		Count(&totals.ExerciseCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var sets struct {
		Sets   int64
		Weight float64
	}
	if err := db.Table("workout_sets").
		Joins("JOIN workout_exercises ON workout_exercises.id = workout_sets.workout_exercise_id").
		Where("workout_exercises.workout_id = ? AND workout_sets.completed = ?", workoutID, true).
		Select("COUNT(workout_sets.id) AS sets, COALESCE(SUM(workout_sets.weight), 0) AS weight").
		Scan(&sets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	totals.SetCount = sets.Sets
	totals.TotalWeightLifted = sets.Weight
	return &totals, nil
}

func (r *statsRepository) PostCounts(ctx context.Context, postID uint) (*PostCounts, error) {
	db := conn(ctx, r.db)
	var rows []struct {
		ReactionType models.ReactionType
		Total        int64
	}
	if err := db.Model(&models.Reaction{}).
		Select("reaction_type, COUNT(*) AS total").
		Where("post_id = ?", postID).
		Group("reaction_type").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var counts PostCounts
	for _, row := range rows {
		switch row.ReactionType {
		case models.ReactionHeart:
			counts.Heart = row.Total
		case models.ReactionThumbsUp:
			counts.ThumbsUp = row.Total
		case models.ReactionFlex:
			counts.Flex = row.Total
		case models.ReactionFire:
			counts.Fire = row.Total
		}
	}
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&counts.Comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &counts, nil
}

// CompletedWorkoutCounts returns lifetime completed workout totals for each
// user. Users without completed workouts are absent from the map.
func (r *statsRepository) CompletedWorkoutCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	defer observability.TrackQuery("aggregate", "workouts")()

	var rows []struct {
		UserID uint
		Total  int64
	}
	if err := conn(ctx, r.db).Model(&models.Workout{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ? AND completed = ?", userIDs, true).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

// WeekTotals counts completed workouts started in [from, to], their completed
// sets and their summed duration.
func (r *statsRepository) WeekTotals(ctx context.Context, userID uint, from, to time.Time) (*WeekTotals, error) {
	db := conn(ctx, r.db)
	window := "workouts.user_id = ? AND workouts.completed = ? AND workouts.started_at >= ? AND workouts.started_at <= ?"

	var totals WeekTotals
	var workouts struct {
		Total    int64
		Duration int64
	}
	if err := db.Model(&models.Workout{}).
		Select("COUNT(*) AS total, COALESCE(SUM(duration_minutes), 0) AS duration").
		Where(window, userID, true, from, to).
		Scan(&workouts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	totals.Workouts = workouts.Total
	totals.DurationMinutes = workouts.Duration

	if err := db.Table("workout_sets").
		Joins("JOIN workout_exercises ON workout_exercises.id = workout_sets.workout_exercise_id").
		Joins("JOIN workouts ON workouts.id = workout_exercises.workout_id").
		Where(window, userID, true, from, to).
		Where("workout_sets.completed = ?", true).
		Count(&totals.Sets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &totals, nil
}
