package service

import (
	"fmt"
	"testing"
	"time"

	"spottr/internal/database"
	"spottr/internal/models"
	"spottr/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires every service against one in-memory SQLite database and a
// shared adjustable clock.
type testEnv struct {
	db  *gorm.DB
	tx  repository.Transactor
	now time.Time

	users        repository.UserRepository
	friends      repository.FriendRepository
	workouts     repository.WorkoutRepository
	posts        repository.PostRepository
	gyms         repository.GymRepository
	groups       repository.GroupRepository
	achievements repository.AchievementRepository

	streak      *StreakService
	stats       *StatsService
	leaderboard *LeaderboardService
	achieve     *AchievementService
	workout     *WorkoutService
	post        *PostService
	social      *SocialService
	gym         *GymService
	group       *GroupService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &testEnv{
		db:           db,
		tx:           repository.NewTransactor(db),
		now:          time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), // a Wednesday
		users:        repository.NewUserRepository(db),
		friends:      repository.NewFriendRepository(db),
		workouts:     repository.NewWorkoutRepository(db),
		posts:        repository.NewPostRepository(db),
		gyms:         repository.NewGymRepository(db),
		groups:       repository.NewGroupRepository(db),
		achievements: repository.NewAchievementRepository(db),
	}
	statsRepo := repository.NewStatsRepository(db)
	chatRepo := repository.NewChatRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	clock := func() time.Time { return env.now }

	env.streak = NewStreakService(env.tx, env.users, env.groups, env.workouts, env.posts, env.achievements, time.Monday)
	env.streak.now = clock
	env.stats = NewStatsService(statsRepo, env.friends)
	env.leaderboard = NewLeaderboardService(env.users, env.friends, env.gyms, env.workouts, statsRepo, time.Monday)
	env.leaderboard.now = clock
	env.achieve = NewAchievementService(env.achievements, env.users, statsRepo, env.friends)
	env.achieve.now = clock
	env.workout = NewWorkoutService(env.tx, env.workouts, env.posts, statsRepo, env.streak, env.achieve, time.Monday)
	env.workout.now = clock
	env.post = NewPostService(env.tx, env.posts, commentRepo, env.friends, env.gyms, env.streak, env.achieve)
	env.post.now = clock
	env.social = NewSocialService(env.users, env.friends, inviteRepo, env.workouts, env.posts, env.stats, nil)
	env.social.now = clock
	env.gym = NewGymService(env.gyms, inviteRepo, env.users)
	env.group = NewGroupService(env.groups, chatRepo, env.users)
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: fmt.Sprintf("%s@example.com", username), Password: "x"}
	require.NoError(t, e.users.Create(t.Context(), user))
	return user
}

func (e *testEnv) createExercise(t *testing.T, name string) *models.ExerciseDefinition {
	t.Helper()
	def := &models.ExerciseDefinition{Name: name, Category: models.CategoryLegs, ExerciseType: models.ExerciseTypeStrength}
	require.NoError(t, e.db.Create(def).Error)
	return def
}

func (e *testEnv) createGym(t *testing.T, name string) *models.Gym {
	t.Helper()
	gym := &models.Gym{Name: name}
	require.NoError(t, e.gyms.Create(t.Context(), gym))
	return gym
}

func (e *testEnv) profile(t *testing.T, userID uint) *models.Profile {
	t.Helper()
	p, err := e.users.GetProfile(t.Context(), userID)
	require.NoError(t, err)
	return p
}

// setStreak writes streak columns directly.
func (e *testEnv) setStreak(t *testing.T, userID uint, current int, last *time.Time) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"current_streak":    current,
		"longest_streak":    current,
		"last_workout_date": last,
	}).Error)
}

// completedWorkouts inserts n finished workouts started at the given time.
func (e *testEnv) completedWorkouts(t *testing.T, userID uint, n int, startedAt time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		w := &models.Workout{UserID: userID, Name: "Workout", StartedAt: startedAt, Completed: true}
		require.NoError(t, e.workouts.Create(t.Context(), w))
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// dropProfile removes the user's profile so streak updates fail with NOT_FOUND.
func (e *testEnv) dropProfile(t *testing.T, userID uint) {
	t.Helper()
	require.NoError(t, e.db.Where("user_id = ?", userID).Delete(&models.Profile{}).Error)
}

func (e *testEnv) restoreProfile(t *testing.T, userID uint) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.Profile{UserID: userID, WorkoutFrequency: 5}).Error)
}
