package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spottr/internal/database"
	"spottr/internal/models"
	"spottr/internal/repository"
	"spottr/internal/service"
	"spottr/internal/streak"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a demo run.
type Options struct {
	Users int
	// Days of workout history generated per user, ending today.
	Days int
	// Seed makes runs reproducible.
	Seed int64
	// Clean removes all user-owned rows first. Catalog rows are kept.
	Clean bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
	Logger     *slog.Logger
}

// Summary counts what a demo run created.
type Summary struct {
	Users    int
	Workouts int
	Posts    int
}

// Demo loads the catalog and fills the store with users who belong to the
// catalog gyms, follow and befriend each other and have a workout history
// whose streaks were computed by the streak engine. Achievements are
// evaluated for everyone at the end.
func Demo(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.Users <= 0 {
		opts.Users = 20
	}
	if opts.Days <= 0 {
		opts.Days = 45
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	log := opts.Logger

	if opts.Clean {
		if err := Clean(ctx, db); err != nil {
			return nil, err
		}
	}
	if err := Catalog(ctx, db); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	var exercises []models.ExerciseDefinition
	if err := db.WithContext(ctx).Order("id").Find(&exercises).Error; err != nil {
		return nil, err
	}
	var gyms []models.Gym
	if err := db.WithContext(ctx).Order("id").Find(&gyms).Error; err != nil {
		return nil, err
	}
	if len(exercises) == 0 || len(gyms) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	f, err := NewFactory(db, opts.Seed, opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		if err := f.JoinGym(ctx, user, &gyms[i%len(gyms)]); err != nil {
			return nil, fmt.Errorf("join gym: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	log.Info("demo users created", slog.Int("count", len(users)))

	// Each user follows the next two and is friends with the one after.
	for i, user := range users {
		for step := 1; step <= 2 && step < len(users); step++ {
			if err := f.Follow(ctx, user, users[(i+step)%len(users)]); err != nil {
				return nil, fmt.Errorf("follow: %w", err)
			}
		}
		if len(users) > 2 && i%2 == 0 {
			if err := f.Befriend(ctx, user, users[(i+1)%len(users)]); err != nil {
				return nil, fmt.Errorf("befriend: %w", err)
			}
		}
	}

	today := streak.DateOf(opts.Now())
	start := today.AddDate(0, 0, -(opts.Days - 1))
	for _, user := range users {
		for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
			if !f.trainsOn(user) {
				continue
			}
			workout, err := f.LogWorkout(ctx, user, exercises, day)
			if err != nil {
				return nil, fmt.Errorf("log workout: %w", err)
			}
			summary.Workouts++
			if f.faker.Number(1, 4) == 1 {
				if _, err := f.PublishWorkout(ctx, workout); err != nil {
					return nil, fmt.Errorf("publish workout: %w", err)
				}
				summary.Posts++
			}
		}
	}
	log.Info("demo history created",
		slog.Int("workouts", summary.Workouts),
		slog.Int("posts", summary.Posts),
	)

	achievements := service.NewAchievementService(
		repository.NewAchievementRepository(db),
		repository.NewUserRepository(db),
		repository.NewStatsRepository(db),
		repository.NewFriendRepository(db),
	)
	for _, user := range users {
		if _, err := achievements.EvaluateAchievements(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("evaluate achievements: %w", err)
		}
	}
	return summary, nil
}

// Clean deletes every user-owned row, children first. Exercises,
// achievements and gyms stay.
func Clean(ctx context.Context, db *gorm.DB) error {
	keep := map[string]bool{"exercise_definitions": true, "achievements": true, "gyms": true}
	all := database.PersistentModels()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := len(all) - 1; i >= 0; i-- {
			stmt := &gorm.Statement{DB: tx}
			if err := stmt.Parse(all[i]); err != nil {
				return err
			}
			if keep[stmt.Schema.Table] {
				continue
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(all[i]).Error; err != nil {
				return fmt.Errorf("clean %s: %w", stmt.Schema.Table, err)
			}
		}
		return nil
	})
}
