package seed

import (
	"context"
	"fmt"
	"time"

	"spottr/internal/models"
	"spottr/internal/repository"
	"spottr/internal/streak"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated account.
const DemoPassword = "password123"

var avatarEmojis = []string{"💪", "🏋️", "🔥", "⚡", "🏃", "🚴", "🧘", "🥇"}

// Factory builds demo entities and persists them. A fixed seed yields the
// same users and history on every run.
type Factory struct {
	db       *gorm.DB
	users    repository.UserRepository
	faker    *gofakeit.Faker
	password string
}

// NewFactory hashes DemoPassword once with cost; pass bcrypt.MinCost in tests.
func NewFactory(db *gorm.DB, seed int64, cost int) (*Factory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &Factory{
		db:       db,
		users:    repository.NewUserRepository(db),
		faker:    gofakeit.New(seed),
		password: string(hash),
	}, nil
}

// CreateUser creates an account with a filled-in profile.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 9999))
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: f.password,
		Profile: &models.Profile{
			DisplayName:      first + " " + last,
			Bio:              f.faker.Sentence(8),
			AvatarEmoji:      avatarEmojis[f.faker.Number(0, len(avatarEmojis)-1)],
			WorkoutFrequency: f.faker.Number(2, 6),
		},
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (f *Factory) JoinGym(ctx context.Context, user *models.User, gym *models.Gym) error {
	return f.db.WithContext(ctx).Create(&models.GymMembership{UserID: user.ID, GymID: gym.ID, IsActive: true}).Error
}

// Befriend stores an accepted friendship from a to b.
func (f *Factory) Befriend(ctx context.Context, a, b *models.User) error {
	return f.db.WithContext(ctx).Create(&models.Friendship{FromUserID: a.ID, ToUserID: b.ID, Accepted: true}).Error
}

func (f *Factory) Follow(ctx context.Context, follower, target *models.User) error {
	return f.db.WithContext(ctx).Create(&models.Follow{FollowerID: follower.ID, FollowingID: target.ID}).Error
}

// LogWorkout stores a completed workout on day and advances the user's
// streak through the streak engine. Days must be logged in ascending order.
func (f *Factory) LogWorkout(ctx context.Context, user *models.User, exercises []models.ExerciseDefinition, day time.Time) (*models.Workout, error) {
	started := streak.DateOf(day).Add(time.Duration(f.faker.Number(6, 20)) * time.Hour)
	duration := f.faker.Number(30, 90)
	completed := started.Add(time.Duration(duration) * time.Minute)

	workout := &models.Workout{
		UserID:          user.ID,
		Name:            f.faker.RandomString([]string{"Push Day", "Pull Day", "Leg Day", "Upper Body", "Full Body", "Conditioning"}),
		StartedAt:       started,
		CompletedAt:     &completed,
		Completed:       true,
		DurationMinutes: duration,
	}
	for i, ex := range f.pick(exercises, f.faker.Number(2, 4)) {
		we := models.WorkoutExercise{ExerciseID: ex.ID, Order: i}
		for n := 1; n <= models.DefaultSets; n++ {
			set := models.WorkoutSet{SetNumber: n, Completed: true}
			if ex.ExerciseType == models.ExerciseTypeCardio {
				seconds := f.faker.Number(300, 1800)
				set.TimeSeconds = &seconds
			} else {
				reps := f.faker.Number(5, 12)
				weight := float64(f.faker.Number(8, 60)) * 2.5
				set.Reps, set.Weight = &reps, &weight
			}
			we.Sets = append(we.Sets, set)
		}
		workout.Exercises = append(workout.Exercises, we)
	}
	if err := f.db.WithContext(ctx).Create(workout).Error; err != nil {
		return nil, err
	}

	if _, err := f.users.UpdateStreak(ctx, user.ID, func(p *models.Profile) (bool, error) {
		return streak.Apply(p, day).Changed(), nil
	}); err != nil {
		return nil, err
	}
	return workout, nil
}

// PublishWorkout posts a workout to the feed at its completion time.
func (f *Factory) PublishWorkout(ctx context.Context, workout *models.Workout) (*models.Post, error) {
	post := models.NewPost(workout.UserID, f.faker.Sentence(6), models.WorkoutBody{WorkoutID: workout.ID, WorkoutName: workout.Name})
	if workout.CompletedAt != nil {
		post.CreatedAt = *workout.CompletedAt
	}
	if err := f.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	err := f.db.WithContext(ctx).Model(&models.Workout{}).Where("id = ?", workout.ID).Update("posted_to_feed", true).Error
	return post, err
}

// trainsOn reports whether the user works out on a given day, with a
// chance of WorkoutFrequency in 7.
func (f *Factory) trainsOn(user *models.User) bool {
	return f.faker.Number(1, 7) <= user.Profile.WorkoutFrequency
}

// pick returns n distinct entries of from in random order.
func (f *Factory) pick(from []models.ExerciseDefinition, n int) []models.ExerciseDefinition {
	if n > len(from) {
		n = len(from)
	}
	out := make([]models.ExerciseDefinition, len(from))
	copy(out, from)
	f.faker.ShuffleAnySlice(out)
	return out[:n]
}
