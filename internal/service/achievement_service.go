package service

import (
	"context"
	"log/slog"
	"time"

	"spottr/internal/middleware"
	"spottr/internal/models"
	"spottr/internal/observability"
	"spottr/internal/repository"
)

// AchievementService evaluates achievement progress for users.
type AchievementService struct {
	achievementRepo repository.AchievementRepository
	userRepo        repository.UserRepository
	statsRepo       repository.StatsRepository
	friendRepo      repository.FriendRepository
	now             func() time.Time
}

func NewAchievementService(
	achievementRepo repository.AchievementRepository,
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	friendRepo repository.FriendRepository,
) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		statsRepo:       statsRepo,
		friendRepo:      friendRepo,
		now:             time.Now,
	}
}

// sources holds the user metrics requirement types are measured against.
type sources struct {
	workouts int64
	streak   int
	friends  int64
}

func (s sources) value(requirementType string) (int64, bool) {
	switch requirementType {
	case models.RequirementWorkouts:
		return s.workouts, true
	case models.RequirementStreak:
		return int64(s.streak), true
	case models.RequirementFriends:
		return s.friends, true
	}
	return 0, false
}

// EvaluateAchievements recomputes progress for every achievement definition.
// Unlocks are sticky and unlocked_at is only ever set once.
func (s *AchievementService) EvaluateAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	defs, err := s.achievementRepo.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	src, err := s.loadSources(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.achievementRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	prior := make(map[uint]models.UserAchievement, len(existing))
	for _, ua := range existing {
		prior[ua.AchievementID] = ua
	}

	now := s.now().UTC()
	rows := make([]models.UserAchievement, 0, len(defs))
	for _, def := range defs {
		value, known := src.value(def.RequirementType)
		if !known {
			middleware.Logger.DebugContext(ctx, "unknown achievement requirement type",
				slog.String("requirement_type", def.RequirementType),
				slog.Uint64("achievement_id", uint64(def.ID)),
			)
		}

		progress := int(min(value, int64(def.RequirementValue)))
		if progress < 0 {
			progress = 0
		}
		row := models.UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			Achievement:   def,
			Progress:      progress,
			Unlocked:      progress >= def.RequirementValue,
		}

		was, seen := prior[def.ID]
		switch {
		case seen && was.Unlocked:
			row.Progress = max(row.Progress, was.Progress)
			row.Unlocked = true
			row.UnlockedAt = was.UnlockedAt
		case row.Unlocked:
			row.UnlockedAt = &now
			observability.AchievementUnlocks.WithLabelValues(def.RequirementType).Inc()
		}
		rows = append(rows, row)
	}

	if err := s.achievementRepo.SaveProgress(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AchievementService) loadSources(ctx context.Context, userID uint) (sources, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return sources{}, err
	}
	totals, err := s.statsRepo.UserTotals(ctx, userID)
	if err != nil {
		return sources{}, err
	}
	following, err := s.friendRepo.CountFollowing(ctx, userID)
	if err != nil {
		return sources{}, err
	}
	return sources{
		workouts: totals.TotalWorkouts,
		streak:   profile.CurrentStreak,
		friends:  following,
	}, nil
}

// List returns the stored achievement progress of a user.
func (s *AchievementService) List(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	return s.achievementRepo.ListForUser(ctx, userID)
}

// refreshAchievements re-evaluates achievements after recorded activity.
// Failures are logged because the activity itself is already stored.
func refreshAchievements(ctx context.Context, ev AchievementEvaluator, userID uint) {
	if ev == nil {
		return
	}
	if _, err := ev.EvaluateAchievements(ctx, userID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to evaluate achievements",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}
