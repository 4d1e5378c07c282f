package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spottr/internal/models"
	"spottr/internal/repository"
	"spottr/internal/streak"
)

// ActivityRecorder records a day of activity against a user's streak.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, userID uint, day time.Time) (*models.Profile, streak.Outcome, error)
}

// AchievementEvaluator recomputes achievement progress for a user.
type AchievementEvaluator interface {
	EvaluateAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error)
}

const emptyWorkoutName = "Empty Workout"

// WorkoutService runs the workout flow from start to feed post.
type WorkoutService struct {
	tx           repository.Transactor
	workoutRepo  repository.WorkoutRepository
	postRepo     repository.PostRepository
	statsRepo    repository.StatsRepository
	streaks      ActivityRecorder
	achievements AchievementEvaluator
	weekStart    time.Weekday
	now          func() time.Time
}

type UpdateSetInput struct {
	UserID      uint
	SetID       uint
	Reps        *int
	Weight      *float64
	Distance    *float64
	TimeSeconds *int
	Completed   bool
}

type PublishWorkoutInput struct {
	UserID         uint
	WorkoutID      uint
	Description    string
	Location       string
	SaveAsTemplate bool
}

type LogPRInput struct {
	UserID     uint
	ExerciseID uint
	Weight     float64
	Reps       int
}

// TrackView is the workout landing page of a user.
type TrackView struct {
	ActiveWorkout *models.Workout          `json:"active_workout"`
	Week          repository.WeekTotals    `json:"week"`
	Templates     []models.WorkoutTemplate `json:"templates"`
}

func NewWorkoutService(
	tx repository.Transactor,
	workoutRepo repository.WorkoutRepository,
	postRepo repository.PostRepository,
	statsRepo repository.StatsRepository,
	streaks ActivityRecorder,
	achievements AchievementEvaluator,
	weekStart time.Weekday,
) *WorkoutService {
	return &WorkoutService{
		tx:           tx,
		workoutRepo:  workoutRepo,
		postRepo:     postRepo,
		statsRepo:    statsRepo,
		streaks:      streaks,
		achievements: achievements,
		weekStart:    weekStart,
		now:          time.Now,
	}
}

func (s *WorkoutService) ListExercises(ctx context.Context) ([]models.ExerciseDefinition, error) {
	return s.workoutRepo.ListExercises(ctx)
}

func (s *WorkoutService) Track(ctx context.Context, userID uint) (*TrackView, error) {
	active, err := s.workoutRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	week, err := s.statsRepo.WeekTotals(ctx, userID, streak.WeekStart(now, s.weekStart), now)
	if err != nil {
		return nil, err
	}
	templates, err := s.workoutRepo.ListTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TrackView{ActiveWorkout: active, Week: *week, Templates: templates}, nil
}

// StartWorkout opens an empty workout.
func (s *WorkoutService) StartWorkout(ctx context.Context, userID uint, name string) (*models.Workout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = emptyWorkoutName
	}
	if len(name) > 100 {
		return nil, models.NewValidationError("Workout name too long (max 100 characters)")
	}
	workout := &models.Workout{UserID: userID, Name: name, StartedAt: s.now().UTC()}
	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

// StartFromTemplate opens a workout pre-filled with the template's exercises
// and default sets, and stamps the template as used.
func (s *WorkoutService) StartFromTemplate(ctx context.Context, userID, templateID uint) (*models.Workout, error) {
	tmpl, err := s.ownedTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	workout := &models.Workout{
		UserID:     userID,
		Name:       tmpl.Name,
		TemplateID: &tmpl.ID,
		StartedAt:  now,
		Exercises:  make([]models.WorkoutExercise, 0, len(tmpl.Exercises)),
	}
	for _, te := range tmpl.Exercises {
		we := models.WorkoutExercise{ExerciseID: te.ExerciseID, Order: te.Order}
		for i := 0; i < te.DefaultSets; i++ {
			reps := te.DefaultReps
			we.Sets = append(we.Sets, models.WorkoutSet{
				SetNumber: i + 1,
				Reps:      &reps,
				Weight:    te.DefaultWeight,
			})
		}
		workout.Exercises = append(workout.Exercises, we)
	}
	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}
	if err := s.workoutRepo.TouchTemplate(ctx, tmpl.ID, now); err != nil {
		return nil, err
	}
	return s.workoutRepo.GetByID(ctx, workout.ID)
}

// GetWorkout returns a workout owned by userID.
func (s *WorkoutService) GetWorkout(ctx context.Context, userID, workoutID uint) (*models.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.UserID != userID {
		return nil, models.NewNotFoundError("Workout", workoutID)
	}
	return workout, nil
}

// AddExercise appends an exercise with the default number of empty sets.
func (s *WorkoutService) AddExercise(ctx context.Context, userID, workoutID, exerciseID uint) (*models.WorkoutExercise, error) {
	if _, err := s.GetWorkout(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	if _, err := s.workoutRepo.GetExercise(ctx, exerciseID); err != nil {
		return nil, err
	}
	return s.workoutRepo.AddExercise(ctx, workoutID, exerciseID, models.DefaultSets)
}

func (s *WorkoutService) AddSet(ctx context.Context, userID, workoutExerciseID uint) (*models.WorkoutSet, error) {
	we, err := s.workoutRepo.GetWorkoutExercise(ctx, workoutExerciseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetWorkout(ctx, userID, we.WorkoutID); err != nil {
		return nil, models.NewNotFoundError("Workout exercise", workoutExerciseID)
	}
	return s.workoutRepo.AddSet(ctx, workoutExerciseID)
}

func (s *WorkoutService) UpdateSet(ctx context.Context, in UpdateSetInput) (*models.WorkoutSet, error) {
	owner, err := s.workoutRepo.OwnerOfSet(ctx, in.SetID)
	if err != nil {
		return nil, err
	}
	if owner != in.UserID {
		return nil, models.NewNotFoundError("Set", in.SetID)
	}
	if (in.Reps != nil && *in.Reps < 0) || (in.Weight != nil && *in.Weight < 0) ||
		(in.Distance != nil && *in.Distance < 0) || (in.TimeSeconds != nil && *in.TimeSeconds < 0) {
		return nil, models.NewValidationError("Set values cannot be negative")
	}

	set, err := s.workoutRepo.GetSet(ctx, in.SetID)
	if err != nil {
		return nil, err
	}
	set.Reps = in.Reps
	set.Weight = in.Weight
	set.Distance = in.Distance
	set.TimeSeconds = in.TimeSeconds
	set.Completed = in.Completed
	if err := s.workoutRepo.UpdateSet(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// CompleteWorkout closes the workout and records the day against the user's
// streak in one transaction, then re-evaluates achievements. Completing a
// finished workout changes nothing.
func (s *WorkoutService) CompleteWorkout(ctx context.Context, userID, workoutID uint) (*models.Workout, error) {
	workout, err := s.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.Completed {
		return workout, nil
	}

	now := s.now().UTC()
	minutes := int(now.Sub(workout.StartedAt) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	var changed bool
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if changed, err = s.workoutRepo.Complete(ctx, workoutID, now, minutes); err != nil || !changed {
			return err
		}
		_, _, err = s.streaks.RecordActivity(ctx, userID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.evaluate(ctx, userID)
	}
	return s.workoutRepo.GetByID(ctx, workoutID)
}

// PublishWorkout posts a completed workout to the feed once. The posted
// flag, the post, the optional template and the streak update commit
// together. Later calls return a nil post without creating another one.
func (s *WorkoutService) PublishWorkout(ctx context.Context, in PublishWorkoutInput) (*models.Post, error) {
	workout, err := s.GetWorkout(ctx, in.UserID, in.WorkoutID)
	if err != nil {
		return nil, err
	}
	if !workout.Completed {
		return nil, models.NewValidationError("Only completed workouts can be posted")
	}
	if workout.PostedToFeed {
		return nil, nil
	}

	description := strings.TrimSpace(in.Description)
	content := description
	if content == "" {
		content = fmt.Sprintf("Completed %s!", workout.Name)
	}
	post := models.NewPost(in.UserID, content, models.WorkoutBody{WorkoutID: workout.ID, WorkoutName: workout.Name})
	if in.Location != "" {
		post.Details.Workout.Location = in.Location
	}

	var posted bool
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if posted, err = s.workoutRepo.MarkPosted(ctx, workout.ID); err != nil || !posted {
			return err
		}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return err
		}
		if description != "" {
			if err := s.workoutRepo.SetNotes(ctx, workout.ID, description); err != nil {
				return err
			}
		}
		if in.SaveAsTemplate && workout.TemplateID == nil {
			if _, err := s.saveAsTemplate(ctx, workout); err != nil {
				return err
			}
		}
		_, _, err = s.streaks.RecordActivity(ctx, in.UserID, s.now())
		return err
	})
	if err != nil || !posted {
		return nil, err
	}
	s.evaluate(ctx, in.UserID)
	return post, nil
}

func (s *WorkoutService) saveAsTemplate(ctx context.Context, workout *models.Workout) (*models.WorkoutTemplate, error) {
	now := s.now().UTC()
	tmpl := &models.WorkoutTemplate{
		UserID:            workout.UserID,
		Name:              workout.Name,
		EstimatedDuration: workout.DurationMinutes,
		LastUsed:          &now,
	}
	for _, we := range workout.Exercises {
		te := models.TemplateExercise{
			ExerciseID:  we.ExerciseID,
			Order:       we.Order,
			DefaultSets: len(we.Sets),
			DefaultReps: models.DefaultReps,
		}
		if len(we.Sets) > 0 {
			first := we.Sets[0]
			if first.Reps != nil && *first.Reps != 0 {
				te.DefaultReps = *first.Reps
			}
			te.DefaultWeight = first.Weight
		}
		tmpl.Exercises = append(tmpl.Exercises, te)
	}
	if err := s.workoutRepo.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *WorkoutService) ListTemplates(ctx context.Context, userID uint) ([]models.WorkoutTemplate, error) {
	return s.workoutRepo.ListTemplates(ctx, userID)
}

// CreateTemplate stores a template. Exercises are optional.
func (s *WorkoutService) CreateTemplate(ctx context.Context, userID uint, name string, exercises []models.TemplateExercise) (*models.WorkoutTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "New Template"
	}
	if len(name) > 100 {
		return nil, models.NewValidationError("Template name too long (max 100 characters)")
	}
	tmpl := &models.WorkoutTemplate{UserID: userID, Name: name}
	for i, te := range exercises {
		if te.DefaultSets <= 0 {
			te.DefaultSets = models.DefaultSets
		}
		if te.DefaultReps <= 0 {
			te.DefaultReps = models.DefaultReps
		}
		tmpl.Exercises = append(tmpl.Exercises, models.TemplateExercise{
			ExerciseID:    te.ExerciseID,
			Order:         i,
			DefaultSets:   te.DefaultSets,
			DefaultReps:   te.DefaultReps,
			DefaultWeight: te.DefaultWeight,
		})
	}
	if err := s.workoutRepo.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	return s.workoutRepo.GetTemplate(ctx, tmpl.ID)
}

func (s *WorkoutService) DeleteTemplate(ctx context.Context, userID, templateID uint) error {
	if _, err := s.ownedTemplate(ctx, userID, templateID); err != nil {
		return err
	}
	return s.workoutRepo.DeleteTemplate(ctx, templateID)
}

func (s *WorkoutService) ownedTemplate(ctx context.Context, userID, templateID uint) (*models.WorkoutTemplate, error) {
	tmpl, err := s.workoutRepo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tmpl.UserID != userID {
		return nil, models.NewNotFoundError("Template", templateID)
	}
	return tmpl, nil
}

func (s *WorkoutService) LogPersonalRecord(ctx context.Context, in LogPRInput) (*models.PersonalRecord, error) {
	if in.Weight <= 0 {
		return nil, models.NewValidationError("Weight must be positive")
	}
	if in.Reps <= 0 {
		in.Reps = 1
	}
	if _, err := s.workoutRepo.GetExercise(ctx, in.ExerciseID); err != nil {
		return nil, err
	}
	pr := &models.PersonalRecord{
		UserID:     in.UserID,
		ExerciseID: in.ExerciseID,
		Weight:     in.Weight,
		Reps:       in.Reps,
		AchievedAt: s.now().UTC(),
	}
	if err := s.workoutRepo.CreatePersonalRecord(ctx, pr); err != nil {
		return nil, err
	}
	return pr, nil
}

func (s *WorkoutService) PersonalRecords(ctx context.Context, userID uint) ([]models.PersonalRecord, error) {
	return s.workoutRepo.BestPersonalRecords(ctx, userID)
}

func (s *WorkoutService) evaluate(ctx context.Context, userID uint) {
	refreshAchievements(ctx, s.achievements, userID)
}
