package repository

import (
	"context"
	"time"

	"spottr/internal/cache"
	"spottr/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkoutRepository defines persistence for workouts, templates, the exercise
// catalog and personal records.
type WorkoutRepository interface {
	ListExercises(ctx context.Context) ([]models.ExerciseDefinition, error)
	GetExercise(ctx context.Context, id uint) (*models.ExerciseDefinition, error)
	UpsertExercises(ctx context.Context, defs []models.ExerciseDefinition) error

	Create(ctx context.Context, workout *models.Workout) error
	GetByID(ctx context.Context, id uint) (*models.Workout, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Workout, error)
	ListCompleted(ctx context.Context, userID uint, limit int) ([]models.Workout, error)
	GetActive(ctx context.Context, userID uint) (*models.Workout, error)
	CompletedStartsBetween(ctx context.Context, userID uint, from, to time.Time) ([]time.Time, error)
	Complete(ctx context.Context, id uint, completedAt time.Time, durationMinutes int) (bool, error)
	MarkPosted(ctx context.Context, id uint) (bool, error)
	SetNotes(ctx context.Context, id uint, notes string) error
	AddExercise(ctx context.Context, workoutID, exerciseID uint, sets int) (*models.WorkoutExercise, error)
	GetWorkoutExercise(ctx context.Context, id uint) (*models.WorkoutExercise, error)
	AddSet(ctx context.Context, workoutExerciseID uint) (*models.WorkoutSet, error)
	GetSet(ctx context.Context, id uint) (*models.WorkoutSet, error)
	UpdateSet(ctx context.Context, set *models.WorkoutSet) error
	OwnerOfSet(ctx context.Context, setID uint) (uint, error)
	CountCompletedBetween(ctx context.Context, userID uint, from, to time.Time) (int64, error)
	CountCompletedBetweenByUser(ctx context.Context, userIDs []uint, from, to time.Time) (map[uint]int64, error)

	CreateTemplate(ctx context.Context, tmpl *models.WorkoutTemplate) error
	GetTemplate(ctx context.Context, id uint) (*models.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, userID uint) ([]models.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, id uint) error
	TouchTemplate(ctx context.Context, id uint, at time.Time) error

	CreatePersonalRecord(ctx context.Context, pr *models.PersonalRecord) error
	BestPersonalRecords(ctx context.Context, userID uint) ([]models.PersonalRecord, error)
}

type workoutRepository struct {
	db *gorm.DB
}

// NewWorkoutRepository returns a new WorkoutRepository implementation.
func NewWorkoutRepository(db *gorm.DB) WorkoutRepository {
	return &workoutRepository{db: db}
}

// ListExercises returns the catalog ordered by category and name. The
// catalog is read through the shared cache.
func (r *workoutRepository) ListExercises(ctx context.Context) ([]models.ExerciseDefinition, error) {
	var defs []models.ExerciseDefinition
	err := cache.CacheAside(ctx, cache.ExerciseCatalogKey, &defs, cache.CatalogTTL, func() error {
		return conn(ctx, r.db).Order("category ASC, name ASC").Find(&defs).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return defs, nil
}

func (r *workoutRepository) GetExercise(ctx context.Context, id uint) (*models.ExerciseDefinition, error) {
	var def models.ExerciseDefinition
	if err := conn(ctx, r.db).First(&def, id).Error; err != nil {
		return nil, notFoundOr(err, "Exercise", id)
	}
	return &def, nil
}

// UpsertExercises inserts definitions by name, updating category and type
// of existing rows.
func (r *workoutRepository) UpsertExercises(ctx context.Context, defs []models.ExerciseDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "exercise_type"}),
	}).Create(&defs).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCatalog(ctx)
	return nil
}

// Create inserts a workout with its nested exercises and sets.
func (r *workoutRepository) Create(ctx context.Context, workout *models.Workout) error {
	if err := conn(ctx, r.db).Create(workout).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *workoutRepository) withDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Exercises.Exercise").
		Preload("Exercises.Sets", func(db *gorm.DB) *gorm.DB { return db.Order("set_number ASC, id ASC") })
}

func (r *workoutRepository) GetByID(ctx context.Context, id uint) (*models.Workout, error) {
	var workout models.Workout
	if err := r.withDetail(conn(ctx, r.db)).First(&workout, id).Error; err != nil {
		return nil, notFoundOr(err, "Workout", id)
	}
	return &workout, nil
}

func (r *workoutRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Workout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var workouts []models.Workout
	if err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&workouts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return workouts, nil
}

// ListCompleted returns the user's most recent completed workouts.
func (r *workoutRepository) ListCompleted(ctx context.Context, userID uint, limit int) ([]models.Workout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var workouts []models.Workout
	if err := conn(ctx, r.db).
		Where("user_id = ? AND completed = ?", userID, true).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&workouts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return workouts, nil
}

// GetActive returns the user's most recently started open workout, or nil
// when every workout is completed.
func (r *workoutRepository) GetActive(ctx context.Context, userID uint) (*models.Workout, error) {
	var workouts []models.Workout
	if err := r.withDetail(conn(ctx, r.db)).
		Where("user_id = ? AND completed = ?", userID, false).
		Order("started_at DESC, id DESC").
		Limit(1).
		Find(&workouts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(workouts) == 0 {
		return nil, nil
	}
	return &workouts[0], nil
}

// CompletedStartsBetween returns start times of completed workouts in [from, to).
func (r *workoutRepository) CompletedStartsBetween(ctx context.Context, userID uint, from, to time.Time) ([]time.Time, error) {
	var starts []time.Time
	if err := conn(ctx, r.db).Model(&models.Workout{}).
		Where("user_id = ? AND completed = ? AND started_at >= ? AND started_at < ?", userID, true, from, to).
		Order("started_at ASC").
		Pluck("started_at", &starts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return starts, nil
}

func (r *workoutRepository) SetNotes(ctx context.Context, id uint, notes string) error {
	res := conn(ctx, r.db).Model(&models.Workout{}).Where("id = ?", id).Update("notes", notes)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Workout", id)
	}
	return nil
}

// Complete marks an open workout completed. It reports false when the
// workout was already completed.
func (r *workoutRepository) Complete(ctx context.Context, id uint, completedAt time.Time, durationMinutes int) (bool, error) {
	res := conn(ctx, r.db).Model(&models.Workout{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":        true,
			"completed_at":     completedAt,
			"duration_minutes": durationMinutes,
		})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkPosted flips posted_to_feed once. It reports false when the workout
// was already posted.
func (r *workoutRepository) MarkPosted(ctx context.Context, id uint) (bool, error) {
	res := conn(ctx, r.db).Model(&models.Workout{}).
		Where("id = ? AND posted_to_feed = ?", id, false).
		Update("posted_to_feed", true)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AddExercise appends an exercise after the existing ones with sets empty sets.
func (r *workoutRepository) AddExercise(ctx context.Context, workoutID, exerciseID uint, sets int) (*models.WorkoutExercise, error) {
	var we models.WorkoutExercise
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WorkoutExercise{}).Where("workout_id = ?", workoutID).Count(&count).Error; err != nil {
			return err
		}
		we = models.WorkoutExercise{
			WorkoutID:  workoutID,
			ExerciseID: exerciseID,
			Order:      int(count),
			Sets:       emptySets(sets),
		}
		return tx.Create(&we).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &we, nil
}

func emptySets(n int) []models.WorkoutSet {
	sets := make([]models.WorkoutSet, 0, n)
	for i := 1; i <= n; i++ {
		sets = append(sets, models.WorkoutSet{SetNumber: i})
	}
	return sets
}

func (r *workoutRepository) GetWorkoutExercise(ctx context.Context, id uint) (*models.WorkoutExercise, error) {
	var we models.WorkoutExercise
	if err := conn(ctx, r.db).First(&we, id).Error; err != nil {
		return nil, notFoundOr(err, "WorkoutExercise", id)
	}
	return &we, nil
}

// AddSet appends a set numbered one past the current count.
func (r *workoutRepository) AddSet(ctx context.Context, workoutExerciseID uint) (*models.WorkoutSet, error) {
	var set models.WorkoutSet
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WorkoutSet{}).Where("workout_exercise_id = ?", workoutExerciseID).Count(&count).Error; err != nil {
			return err
		}
		set = models.WorkoutSet{WorkoutExerciseID: workoutExerciseID, SetNumber: int(count) + 1}
		return tx.Create(&set).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &set, nil
}

func (r *workoutRepository) GetSet(ctx context.Context, id uint) (*models.WorkoutSet, error) {
	var set models.WorkoutSet
	if err := conn(ctx, r.db).First(&set, id).Error; err != nil {
		return nil, notFoundOr(err, "WorkoutSet", id)
	}
	return &set, nil
}

func (r *workoutRepository) UpdateSet(ctx context.Context, set *models.WorkoutSet) error {
	if err := conn(ctx, r.db).Model(set).
		Select("reps", "weight", "distance", "time_seconds", "completed").
		Updates(set).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// OwnerOfSet returns the id of the user whose workout contains the set.
func (r *workoutRepository) OwnerOfSet(ctx context.Context, setID uint) (uint, error) {
	var owners []uint
	if err := conn(ctx, r.db).
		Table("workout_sets").
		Joins("JOIN workout_exercises ON workout_exercises.id = workout_sets.workout_exercise_id").
		Joins("JOIN workouts ON workouts.id = workout_exercises.workout_id").
		Where("workout_sets.id = ?", setID).
		Pluck("workouts.user_id", &owners).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	if len(owners) == 0 {
		return 0, models.NewNotFoundError("WorkoutSet", setID)
	}
	return owners[0], nil
}

// CountCompletedBetween counts completed workouts started in [from, to].
func (r *workoutRepository) CountCompletedBetween(ctx context.Context, userID uint, from, to time.Time) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Workout{}).
		Where("user_id = ? AND completed = ? AND started_at >= ? AND started_at <= ?", userID, true, from, to).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CountCompletedBetweenByUser is the batched form of CountCompletedBetween.
// Users with no workouts in the window are absent from the map.
func (r *workoutRepository) CountCompletedBetweenByUser(ctx context.Context, userIDs []uint, from, to time.Time) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		UserID uint
		Total  int64
	}
	if err := conn(ctx, r.db).Model(&models.Workout{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ? AND completed = ? AND started_at >= ? AND started_at <= ?", userIDs, true, from, to).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

func (r *workoutRepository) CreateTemplate(ctx context.Context, tmpl *models.WorkoutTemplate) error {
	if err := conn(ctx, r.db).Create(tmpl).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *workoutRepository) GetTemplate(ctx context.Context, id uint) (*models.WorkoutTemplate, error) {
	var tmpl models.WorkoutTemplate
	if err := conn(ctx, r.db).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Exercises.Exercise").
		First(&tmpl, id).Error; err != nil {
		return nil, notFoundOr(err, "Template", id)
	}
	return &tmpl, nil
}

func (r *workoutRepository) ListTemplates(ctx context.Context, userID uint) ([]models.WorkoutTemplate, error) {
	var templates []models.WorkoutTemplate
	if err := conn(ctx, r.db).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Exercises.Exercise").
		Where("user_id = ?", userID).
		Order("last_used DESC, created_at DESC").
		Find(&templates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return templates, nil
}

func (r *workoutRepository) DeleteTemplate(ctx context.Context, id uint) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateExercise{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Workout{}).Where("template_id = ?", id).Update("template_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.WorkoutTemplate{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *workoutRepository) TouchTemplate(ctx context.Context, id uint, at time.Time) error {
	if err := conn(ctx, r.db).Model(&models.WorkoutTemplate{}).
		Where("id = ?", id).
		Update("last_used", at).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *workoutRepository) CreatePersonalRecord(ctx context.Context, pr *models.PersonalRecord) error {
	if err := conn(ctx, r.db).Create(pr).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// BestPersonalRecords returns the heaviest record per exercise, newest first
// among equal weights.
func (r *workoutRepository) BestPersonalRecords(ctx context.Context, userID uint) ([]models.PersonalRecord, error) {
	var records []models.PersonalRecord
	if err := conn(ctx, r.db).
		Preload("Exercise").
		Where("user_id = ?", userID).
		Order("exercise_id ASC, weight DESC, achieved_at DESC").
		Find(&records).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	best := records[:0]
	var last uint
	for i, pr := range records {
		if i > 0 && pr.ExerciseID == last {
			continue
		}
		best = append(best, pr)
		last = pr.ExerciseID
	}
	return best, nil
}
