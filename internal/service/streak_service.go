package service

import (
	"context"
	"log/slog"
	"time"

	"spottr/internal/middleware"
	"spottr/internal/models"
	"spottr/internal/observability"
	"spottr/internal/repository"
	"spottr/internal/streak"
)

// StreakService records daily activity against personal and group streaks.
type StreakService struct {
	tx              repository.Transactor
	userRepo        repository.UserRepository
	groupRepo       repository.GroupRepository
	workoutRepo     repository.WorkoutRepository
	postRepo        repository.PostRepository
	achievementRepo repository.AchievementRepository
	weekStart       time.Weekday
	now             func() time.Time
}

// DayActivity is one day of the weekly activity strip.
type DayActivity struct {
	Date        time.Time `json:"date"`
	DayName     string    `json:"day_name"`
	HasActivity bool      `json:"has_activity"`
	IsToday     bool      `json:"is_today"`
}

// StreakOverview is the streak page of one user.
type StreakOverview struct {
	Profile         *models.Profile          `json:"profile"`
	StreakActive    bool                     `json:"streak_active"`
	WeeklyWorkouts  int64                    `json:"weekly_workouts"`
	WeeklyPostCount int64                    `json:"weekly_post_count"`
	WeekDays        []DayActivity            `json:"week_days"`
	Achievements    []models.UserAchievement `json:"achievements"`
	Groups          []models.Group           `json:"group_streaks"`
}

func NewStreakService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	workoutRepo repository.WorkoutRepository,
	postRepo repository.PostRepository,
	achievementRepo repository.AchievementRepository,
	weekStart time.Weekday,
) *StreakService {
	return &StreakService{
		tx:              tx,
		userRepo:        userRepo,
		groupRepo:       groupRepo,
		workoutRepo:     workoutRepo,
		postRepo:        postRepo,
		achievementRepo: achievementRepo,
		weekStart:       weekStart,
		now:             time.Now,
	}
}

// RecordActivity applies activity on the UTC date of day to the user's
// streak while holding the profile row lock. It joins the transaction
// carried by ctx, if any. When the streak changed, the streaks of every
// group the user belongs to are advanced in a nested unit; failures there
// are rolled back and logged and do not fail the call.
func (s *StreakService) RecordActivity(ctx context.Context, userID uint, day time.Time) (*models.Profile, streak.Outcome, error) {
	date := streak.DateOf(day)
	outcome := streak.Noop
	profile, err := s.userRepo.UpdateStreak(ctx, userID, func(p *models.Profile) (bool, error) {
		outcome = streak.Apply(p, date)
		return outcome.Changed(), nil
	})
	if err != nil {
		return nil, streak.Noop, err
	}
	observability.StreakUpdates.WithLabelValues(string(outcome)).Inc()

	if outcome.Changed() {
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.advanceGroups(ctx, userID, date)
		})
		if err != nil {
			middleware.Logger.WarnContext(ctx, "failed to update group streaks",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return profile, outcome, nil
}

func (s *StreakService) advanceGroups(ctx context.Context, userID uint, date time.Time) error {
	groupIDs, err := s.groupRepo.GroupIDsForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, groupID := range groupIDs {
		active, err := s.activeMembers(ctx, groupID, date)
		if err != nil {
			return err
		}
		_, err = s.groupRepo.UpdateStreak(ctx, groupID, func(gs *models.GroupStreak) (bool, error) {
			before := gs.ActiveMembers
			return streak.ApplyGroup(gs, date, active).Changed() || before != active, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// activeMembers counts members of the group whose personal streak is active on date.
func (s *StreakService) activeMembers(ctx context.Context, groupID uint, date time.Time) (int, error) {
	memberIDs, err := s.groupRepo.MemberIDs(ctx, groupID)
	if err != nil {
		return 0, err
	}
	members, err := s.userRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return 0, err
	}
	active := 0
	for _, m := range members {
		if m.Profile != nil && streak.IsActive(m.Profile.LastWorkoutDate, date) {
			active++
		}
	}
	return active, nil
}

// IsStreakActive reports whether the profile's streak counts as active on today.
func (s *StreakService) IsStreakActive(profile *models.Profile, today time.Time) bool {
	if profile == nil {
		return false
	}
	return streak.IsActive(profile.LastWorkoutDate, today)
}

// WeekStart returns the start of the current leaderboard week.
func (s *StreakService) WeekStart() time.Time {
	return streak.WeekStart(s.now(), s.weekStart)
}

func (s *StreakService) Overview(ctx context.Context, userID uint) (*StreakOverview, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	today := streak.DateOf(now)
	weekStart := streak.WeekStart(now, s.weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	weekly, err := s.workoutRepo.CountCompletedBetween(ctx, userID, weekStart, now)
	if err != nil {
		return nil, err
	}
	postTimes, err := s.postRepo.CreatedAtBetween(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	posted := make(map[time.Time]bool, len(postTimes))
	var weeklyPosts int64
	for _, t := range postTimes {
		posted[streak.DateOf(t)] = true
		if !t.After(now) {
			weeklyPosts++
		}
	}

	days := make([]DayActivity, 0, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		days = append(days, DayActivity{
			Date:        d,
			DayName:     d.Format("Mon"),
			HasActivity: posted[d],
			IsToday:     d.Equal(today),
		})
	}

	achievements, err := s.achievementRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StreakOverview{
		Profile:         profile,
		StreakActive:    s.IsStreakActive(profile, today),
		WeeklyWorkouts:  weekly,
		WeeklyPostCount: weeklyPosts,
		WeekDays:        days,
		Achievements:    achievements,
		Groups:          groups,
	}, nil
}
